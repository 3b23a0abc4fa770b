package ner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jdkato/prose/v2"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
)

const warmupText = "Jane Doe works for Acme Corporation in Nairobi."

// ProseRecognizer runs the statistical tagger and entity model from prose.
// Build it once at startup and share it; the model is loaded once and only read after.
type ProseRecognizer struct {
	logger *slog.Logger
	model  *prose.Model
}

// NewProseRecognizer loads the prose model by tagging a warm-up sentence and keeps
// it for every later call. A failure here means the backend is unusable.
func NewProseRecognizer(logger *slog.Logger) (*ProseRecognizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	model, err := loadProseModel()
	if err != nil {
		logger.Error("ner.prose.load_failed", "error", err)
		return nil, err
	}
	logger.Info("ner.prose.loaded", "elapsed_ms", time.Since(start).Milliseconds())
	return &ProseRecognizer{logger: logger, model: model}, nil
}

func loadProseModel() (model *prose.Model, err error) {
	defer func() {
		if p := recover(); p != nil {
			model = nil
			err = common.ModelUnavailable(constants.NERProse, fmt.Errorf("panic: %v", p))
		}
	}()
	doc, err := prose.NewDocument(warmupText, prose.WithSegmentation(false))
	if err != nil {
		return nil, common.ModelUnavailable(constants.NERProse, err)
	}
	if doc.Model == nil {
		return nil, common.ModelUnavailable(constants.NERProse, nil)
	}
	return doc.Model, nil
}

func (r *ProseRecognizer) Name() string { return constants.NERProse }

func (r *ProseRecognizer) Recognize(ctx context.Context, text string) (ents []Entity, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []Entity{}, nil
	}

	defer func() {
		if p := recover(); p != nil {
			ents = nil
			err = common.ModelUnavailable(constants.NERProse, fmt.Errorf("panic: %v", p))
		}
	}()

	doc, err := prose.NewDocument(text, prose.UsingModel(r.model), prose.WithSegmentation(false))
	if err != nil {
		return nil, common.ModelUnavailable(constants.NERProse, err)
	}

	found := doc.Entities()
	out := make([]Entity, 0, len(found))
	cursor := 0
	for _, e := range found {
		start := cursor
		if idx := strings.Index(text[cursor:], e.Text); idx >= 0 {
			start = cursor + idx
			cursor = start + len(e.Text)
		}
		out = append(out, Entity{Label: Label(e.Label), Text: e.Text, Start: start})
	}
	return Filter(out), nil
}
