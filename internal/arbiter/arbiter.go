// Package arbiter merges detector output into the final contact record.
package arbiter

import (
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/extract"
	"github.com/joseph-ayodele/cardscan/internal/gazetteer"
	"github.com/joseph-ayodele/cardscan/internal/ner"
)

// Inputs are the three independent detector results for one text.
type Inputs struct {
	Candidates extract.Candidates
	Entities   ner.Derived
	Places     gazetteer.Places
}

// Merge applies the fixed field precedence:
//
//	organization_name     first ORG entity
//	primary/other phone   first and second phone candidates
//	email, website        first candidate
//	city, country         first gazetteer match
//	industry              never set
//
// Fields are not cross-checked against each other.
func Merge(in Inputs) entity.ContactRecord {
	return entity.ContactRecord{
		OrganizationName:   in.Entities.CompanyName,
		PrimaryPhoneNumber: entity.At(in.Candidates.Phones, 0),
		OtherPhoneNumber:   entity.At(in.Candidates.Phones, 1),
		Email:              entity.At(in.Candidates.Emails, 0),
		Industry:           nil,
		City:               in.Places.City(),
		Country:            in.Places.Country(),
		Website:            entity.At(in.Candidates.Websites, 0),
	}
}
