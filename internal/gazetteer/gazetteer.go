// Package gazetteer resolves city and country mentions in card text against a
// curated lexicon of known place names.
package gazetteer

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// Kind tells whether a name is a city, a country, or both (city-states).
type Kind uint8

const (
	City Kind = 1 << iota
	Country
)

// Lexicon is the list of names a Resolver knows.
type Lexicon struct {
	Cities    []string `yaml:"cities"`
	Countries []string `yaml:"countries"`
}

// Places holds recognized names, each list distinct and ordered by first occurrence.
type Places struct {
	Cities    []string `json:"cities"`
	Countries []string `json:"countries"`
}

// City returns the first recognized city, or nil.
func (p Places) City() *string { return entity.At(p.Cities, 0) }

// Country returns the first recognized country, or nil.
func (p Places) Country() *string { return entity.At(p.Countries, 0) }

// Match is one place mention in the text.
type Match struct {
	Name  string
	Kind  Kind
	Start int
}

// Resolver matches lexicon names on word boundaries. At any position the longest
// known name wins, so "Papua New Guinea" is never read as "Guinea".
type Resolver struct {
	pattern *regexp.Regexp
	kinds   map[string]Kind
	logger  *slog.Logger
}

func NewResolver(lex Lexicon, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	kinds := make(map[string]Kind, len(lex.Cities)+len(lex.Countries))
	add := func(names []string, k Kind) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				kinds[n] |= k
			}
		}
	}
	add(lex.Cities, City)
	add(lex.Countries, Country)

	r := &Resolver{kinds: kinds, logger: logger}
	if len(kinds) == 0 {
		return r
	}

	names := make([]string, 0, len(kinds))
	for n := range kinds {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	// RE2's \b is ASCII-only, so word edges are checked against Unicode letters instead.
	r.pattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(` + strings.Join(quoted, "|") + `)`)
	return r
}

// Size reports how many distinct names the resolver knows.
func (r *Resolver) Size() int { return len(r.kinds) }

// Matches returns every place mention in text in order of appearance.
func (r *Resolver) Matches(text string) []Match {
	if r.pattern == nil || text == "" {
		return nil
	}
	locs := r.pattern.FindAllStringSubmatchIndex(text, -1)
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[2], loc[3]
		if next, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && isWordRune(next) {
			continue
		}
		name := text[start:end]
		out = append(out, Match{Name: name, Kind: r.kinds[name], Start: start})
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Lookup splits the mentions in text into cities and countries.
func (r *Resolver) Lookup(ctx context.Context, text string) (Places, error) {
	if err := ctx.Err(); err != nil {
		return Places{}, err
	}
	p := Places{Cities: []string{}, Countries: []string{}}
	seen := map[Kind]map[string]struct{}{City: {}, Country: {}}
	for _, m := range r.Matches(text) {
		if m.Kind&City != 0 {
			if _, dup := seen[City][m.Name]; !dup {
				seen[City][m.Name] = struct{}{}
				p.Cities = append(p.Cities, m.Name)
			}
		}
		if m.Kind&Country != 0 {
			if _, dup := seen[Country][m.Name]; !dup {
				seen[Country][m.Name] = struct{}{}
				p.Countries = append(p.Countries, m.Name)
			}
		}
	}
	r.logger.Debug("gazetteer.lookup.ok", "cities", len(p.Cities), "countries", len(p.Countries))
	return p, nil
}
