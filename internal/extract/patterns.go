package extract

import (
	"regexp"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// Field detector expressions. Each one is matched on its own against the raw text.
var (
	EmailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)

	// International shape, then a bare 10-digit local number (optionally "n"-prefixed),
	// then a 0-prefixed local number with an optional "/"-joined second number.
	PhonePattern = regexp.MustCompile(
		`\+?\d{1,4}[-.\s]?\(?\d{1,3}\)?[-.\s]?\d{3,4}[-.\s]?\d{4,5}` +
			`|\bn?\d{10}\b` +
			`|\b0\d{9}\b(?:/\d{10})?`)

	// PhoneContextPattern marks text that talks about phone numbers anywhere.
	PhoneContextPattern = regexp.MustCompile(`(?i)\b(?:Tel|Mobile|Phone|Contact|Cell)\b`)

	WebsitePattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

	AddressPattern = regexp.MustCompile(`(?im)` +
		`(?:\d{1,5}\s)?` +
		`(?:[A-Za-z\s]+(?:Square|Building|Tower|Floor|Block|Avenue|St|Street|` +
		`Rd|Road|Lane|Ln|Drive|Dr|Boulevard|Blvd|Place|Pl)[,.\s]*)+` +
		`(?:,\s*\w+)*` +
		`,\s*\w+\s*\d{0,6}` +
		`|\bP\.O\.\sBox\s\d+\b`)
)

// SocialPatterns holds one case-insensitive expression per platform. Alternatives are
// tried in order: domain with path, labelled handle, bare domain, shorthand slash form.
var SocialPatterns = map[entity.Platform]*regexp.Regexp{
	entity.Facebook:  regexp.MustCompile(`(?i)facebook\.com/\S+|FB:\S+|facebook\.com|FB/|fb\.com`),
	entity.Instagram: regexp.MustCompile(`(?i)instagram\.com/\S+|IG:\S+|instagram\.com|IG/|ig\.com`),
	entity.Twitter:   regexp.MustCompile(`(?i)twitter\.com/\S+|Twitter:\S+|twitter\.com|Twitter/|t\.co`),
}

// minPhoneLen is the shortest match accepted as a phone number.
const minPhoneLen = 7

// DefaultAddressStoplist names bare countries dropped when they form a whole address candidate.
var DefaultAddressStoplist = []string{"kenya", "uganda", "tanzania"}
