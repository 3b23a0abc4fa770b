// Package pipeline sequences OCR and one restructuring strategy into a contact record.
package pipeline

import (
	"context"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/extract"
	"github.com/joseph-ayodele/cardscan/internal/gazetteer"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/ner"
)

// TextSource is the OCR collaborator.
type TextSource interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// PlaceResolver is the gazetteer collaborator.
type PlaceResolver interface {
	Lookup(ctx context.Context, text string) (gazetteer.Places, error)
}

// Strategy turns raw card text into a contact record.
type Strategy interface {
	Restructure(ctx context.Context, text string) (Outcome, error)
	Name() string
}

// Outcome is what a strategy produces. Extraction is set by the rule strategy and
// Card by the LLM strategy.
type Outcome struct {
	Record     entity.ContactRecord
	Extraction *Extraction
	Card       *llm.ContactCard
}

// Extraction is the trace of one rule-based run.
type Extraction struct {
	Candidates  extract.Candidates `json:"candidates"`
	Entities    []ner.Entity       `json:"entities"`
	AgentName   *string            `json:"agent_name"`
	CompanyName *string            `json:"company_name"`
	Addresses   []string           `json:"addresses"`
	Address     *string            `json:"address"`
	Places      gazetteer.Places   `json:"places"`
	Degraded    []string           `json:"degraded,omitempty"`
}

// Result is one processed card.
type Result struct {
	RequestID     string
	Strategy      string
	Message       string
	ExtractedText string
	Record        entity.ContactRecord
	Extraction    *Extraction
	Card          *llm.ContactCard
}

// Response is the external JSON shape of a Result.
type Response struct {
	Message       string `json:"message"`
	ExtractedText string `json:"extracted_text"`
	FinalData     any    `json:"final_data"`
}

// Response renders the result. The LLM path reports the model's envelope as
// final_data; the rule path reports the merged record.
func (r Result) Response() Response {
	var final any = r.Record
	if r.Card != nil {
		final = llm.Envelope{Data: *r.Card}
	}
	return Response{Message: r.Message, ExtractedText: r.ExtractedText, FinalData: final}
}

func messageFor(strategy string) string {
	if strategy == constants.StrategyLLM {
		return constants.MessageLLM
	}
	return constants.MessageRules
}
