// Package ner pulls person, organization and place entities out of card text.
//
// Backends implement Recognizer and return entities in document order. A backend that
// cannot load or run its model fails with common.ErrModelUnavailable; callers decide
// whether to degrade.
package ner

import (
	"context"
	"sort"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// Label classifies an entity span.
type Label string

const (
	Person       Label = "PERSON"
	Organization Label = "ORG"
	GeoPolitical Label = "GPE"
	Location     Label = "LOC"
	Facility     Label = "FAC"
)

var labelsOfInterest = map[Label]struct{}{
	Person:       {},
	Organization: {},
	GeoPolitical: {},
	Location:     {},
	Facility:     {},
}

// Entity is one labelled span. Start is the byte offset of Text in the source.
type Entity struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
	Start int    `json:"start"`
}

// Recognizer is the NER collaborator.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
	Name() string
}

// Derived holds the values the pipeline reads from the entity list.
type Derived struct {
	AgentName   *string  `json:"agent_name"`
	CompanyName *string  `json:"company_name"`
	Locations   []string `json:"locations"`
}

// Filter keeps PERSON, ORG, GPE, LOC and FAC entities.
func Filter(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if _, ok := labelsOfInterest[e.Label]; ok && e.Text != "" {
			out = append(out, e)
		}
	}
	return out
}

// Derive picks the first PERSON as agent, the first ORG as company and collects the
// distinct GPE, LOC and FAC texts in order.
func Derive(entities []Entity) Derived {
	d := Derived{Locations: []string{}}
	seen := make(map[string]struct{})
	for _, e := range entities {
		switch e.Label {
		case Person:
			if d.AgentName == nil {
				d.AgentName = entity.Str(e.Text)
			}
		case Organization:
			if d.CompanyName == nil {
				d.CompanyName = entity.Str(e.Text)
			}
		case GeoPolitical, Location, Facility:
			if _, dup := seen[e.Text]; !dup {
				seen[e.Text] = struct{}{}
				d.Locations = append(d.Locations, e.Text)
			}
		}
	}
	return d
}

// ordered sorts entities by offset and drops spans overlapping an earlier, longer one.
func ordered(entities []Entity) []Entity {
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Start != entities[j].Start {
			return entities[i].Start < entities[j].Start
		}
		return len(entities[i].Text) > len(entities[j].Text)
	})
	out := make([]Entity, 0, len(entities))
	end := -1
	for _, e := range entities {
		if e.Start < end {
			continue
		}
		out = append(out, e)
		end = e.Start + len(e.Text)
	}
	return out
}
