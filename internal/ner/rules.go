package ner

import (
	"context"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Span is a place mention located by a PlaceFinder.
type Span struct {
	Text  string
	Start int
}

// PlaceFinder locates known place names in text, in order of appearance.
type PlaceFinder func(text string) []Span

var (
	// labelled card fields, e.g. "Name: Jane Doe" or "Company - ABC Ltd".
	reLabelled = regexp.MustCompile(`^(?i:(name|contact person|contact name|attn|attention|company|organi[sz]ation|employer))\s*[:\-]\s*(\S.*)$`)

	reOrgSuffix = regexp.MustCompile(`\b(?:Ltd|LTD|Limited|LIMITED|Inc|INC|LLC|LLP|PLC|Plc|Corp|CORP|Corporation|CORPORATION|Company|COMPANY|Co|Group|GROUP|Holdings|GmbH|Enterprises|Solutions|Technologies|Consulting|Consultants|Agency|Bank|Insurance|Industries|Associates)\b\.?`)

	rePersonLine = regexp.MustCompile(`^\p{Lu}[\p{L}'’.-]*(?:[ \t]+\p{Lu}[\p{L}'’.-]*){1,2}$`)

	reFacility = regexp.MustCompile(`(?:\p{Lu}[\p{L}'&-]*[ \t]+){1,3}(?:Building|House|Tower|Towers|Plaza|Centre|Center|Mall|Complex|Court|Park)\b`)
)

// words that rule a capitalized line out as a personal name
var notNameWords = map[string]struct{}{
	"manager": {}, "director": {}, "officer": {}, "engineer": {}, "sales": {}, "ceo": {}, "cto": {},
	"cfo": {}, "founder": {}, "consultant": {}, "executive": {}, "assistant": {}, "president": {},
	"head": {}, "lead": {}, "agent": {}, "marketing": {}, "developer": {}, "designer": {},
	"accountant": {}, "partner": {}, "advocate": {}, "chairman": {}, "secretary": {},
	"coordinator": {}, "specialist": {}, "analyst": {}, "representative": {}, "supervisor": {},
	"administrator": {}, "associate": {},
	"avenue": {}, "street": {}, "road": {}, "lane": {}, "drive": {}, "boulevard": {}, "place": {},
	"square": {}, "building": {}, "tower": {}, "floor": {}, "block": {}, "plaza": {}, "house": {},
	"centre": {}, "center": {}, "box": {},
}

// RuleRecognizer is a deterministic recognizer tuned for business cards: organizations
// by legal suffix, people by labelled fields or short capitalized lines, places through
// an injected PlaceFinder and facilities by building keywords.
type RuleRecognizer struct {
	places PlaceFinder
}

type RuleOption func(*RuleRecognizer)

// WithPlaces labels spans found by f as GPE.
func WithPlaces(f PlaceFinder) RuleOption {
	return func(r *RuleRecognizer) {
		if f != nil {
			r.places = f
		}
	}
}

func NewRuleRecognizer(opts ...RuleOption) *RuleRecognizer {
	r := &RuleRecognizer{places: func(string) []Span { return nil }}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RuleRecognizer) Name() string { return constants.NERRules }

func (r *RuleRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	places := r.places(text)
	var out []Entity
	for _, p := range places {
		out = append(out, Entity{Label: GeoPolitical, Text: p.Text, Start: p.Start})
	}

	offset := 0
	for _, line := range strings.Split(text, "\n") {
		lineStart := offset
		offset += len(line) + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		start := lineStart + strings.Index(line, trimmed)

		if e, ok := labelledEntity(trimmed, start); ok {
			out = append(out, e)
			continue
		}
		if isOrgLine(trimmed) {
			out = append(out, Entity{Label: Organization, Text: trimmed, Start: start})
			continue
		}
		if isPersonLine(trimmed) && !coversPlace(places, start, start+len(trimmed)) {
			out = append(out, Entity{Label: Person, Text: trimmed, Start: start})
		}
	}

	for _, loc := range reFacility.FindAllStringIndex(text, -1) {
		out = append(out, Entity{Label: Facility, Text: text[loc[0]:loc[1]], Start: loc[0]})
	}

	return ordered(out), nil
}

func labelledEntity(line string, start int) (Entity, bool) {
	m := reLabelled.FindStringSubmatchIndex(line)
	if m == nil {
		return Entity{}, false
	}
	label := strings.ToLower(line[m[2]:m[3]])
	value := strings.TrimSpace(line[m[4]:m[5]])
	if value == "" {
		return Entity{}, false
	}
	e := Entity{Label: Person, Text: value, Start: start + m[4]}
	switch label {
	case "company", "organisation", "organization", "employer":
		e.Label = Organization
	}
	return e, true
}

func isOrgLine(line string) bool {
	if strings.ContainsAny(line, "@:") || strings.Contains(line, "www.") || strings.Contains(line, "://") {
		return false
	}
	if len(strings.Fields(line)) > 8 {
		return false
	}
	return reOrgSuffix.MatchString(line)
}

func isPersonLine(line string) bool {
	if !rePersonLine.MatchString(line) {
		return false
	}
	for _, w := range strings.Fields(line) {
		if _, bad := notNameWords[strings.ToLower(strings.Trim(w, ".,"))]; bad {
			return false
		}
	}
	return true
}

func coversPlace(places []Span, start, end int) bool {
	for _, p := range places {
		if p.Start >= start && p.Start+len(p.Text) <= end {
			return true
		}
	}
	return false
}
