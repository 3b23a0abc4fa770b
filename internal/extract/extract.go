// Package extract holds the regex-driven field detectors run against raw card text.
//
// Every detector is a pure function: it never fails, returns an empty result when
// nothing matches, and lists its matches deduplicated in order of first appearance.
// All functions are safe for concurrent use.
package extract

import (
	"strings"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// Candidates gathers the output of every pattern detector for one text.
type Candidates struct {
	Emails    []string                    `json:"emails"`
	Phones    []string                    `json:"phones"`
	Websites  []string                    `json:"websites"`
	Social    map[entity.Platform]*string `json:"social"`
	Addresses []string                    `json:"addresses"`
}

// All runs every pattern detector over text.
func All(text string) Candidates {
	return Candidates{
		Emails:    Emails(text),
		Phones:    Phones(text),
		Websites:  Websites(text),
		Social:    SocialHandles(text),
		Addresses: Addresses(text),
	}
}

// Emails returns the distinct email addresses in text.
func Emails(text string) []string {
	return distinct(EmailPattern.FindAllString(text, -1))
}

// Phones returns the distinct phone numbers in text. A match must be at least seven
// characters long and either the text mentions phones somewhere or the match itself
// starts with "+", "n" or "0".
func Phones(text string) []string {
	matches := PhonePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{}
	}
	hasContext := PhoneContextPattern.MatchString(text)

	set := newOrderedSet(len(matches))
	for _, m := range matches {
		if len(m) < minPhoneLen {
			continue
		}
		if hasContext || strings.HasPrefix(m, "+") || strings.HasPrefix(m, "n") || strings.HasPrefix(m, "0") {
			set.add(m)
		}
	}
	return set.list()
}

// Websites returns the distinct http(s) and www. references in text.
func Websites(text string) []string {
	return distinct(WebsitePattern.FindAllString(text, -1))
}

// SocialHandles returns the first snippet matched for each platform, nil when absent.
func SocialHandles(text string) map[entity.Platform]*string {
	out := make(map[entity.Platform]*string, len(entity.Platforms))
	for _, p := range entity.Platforms {
		out[p] = entity.Str(SocialPatterns[p].FindString(text))
	}
	return out
}

// Addresses returns the distinct street-shaped and P.O. Box matches in text, trimmed.
func Addresses(text string) []string {
	matches := AddressPattern.FindAllString(text, -1)
	set := newOrderedSet(len(matches))
	for _, m := range matches {
		set.add(strings.TrimSpace(m))
	}
	return set.list()
}

// FilterAddresses merges regex address matches with location spans from NER and drops
// any candidate that is, case-insensitively, one of the stoplisted names on its own.
// A nil stoplist means DefaultAddressStoplist.
func FilterAddresses(matches, locations, stoplist []string) []string {
	if stoplist == nil {
		stoplist = DefaultAddressStoplist
	}
	stop := lowerSet(stoplist)

	set := newOrderedSet(len(matches) + len(locations))
	for _, group := range [][]string{matches, locations} {
		for _, c := range group {
			c = strings.TrimSpace(c)
			if _, drop := stop[strings.ToLower(c)]; drop {
				continue
			}
			set.add(c)
		}
	}
	return set.list()
}

// JoinAddress renders address candidates as one comma-separated string, nil when empty.
func JoinAddress(candidates []string) *string {
	return entity.Str(strings.Join(candidates, ", "))
}
