package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

// LLMStrategy hands the whole text to a completion model. Errors surface as-is;
// there is no retry and no fallback to the rule strategy.
type LLMStrategy struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewLLMStrategy(completer llm.Completer, logger *slog.Logger) *LLMStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMStrategy{completer: completer, logger: logger}
}

func (s *LLMStrategy) Name() string { return constants.StrategyLLM }

func (s *LLMStrategy) Restructure(ctx context.Context, text string) (Outcome, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	content, err := s.completer.Complete(ctx, llm.BuildPrompt(text))
	if err != nil {
		s.logger.Error("pipeline.llm.complete_failed", "req_id", rid, "error", err)
		return Outcome{}, err
	}
	card, err := llm.ParseContactCard(content, s.logger)
	if err != nil {
		s.logger.Error("pipeline.llm.parse_failed", "req_id", rid, "error", err)
		return Outcome{}, err
	}

	s.logger.Info("pipeline.llm.ok",
		"req_id", rid,
		"phones", len(card.PhoneNumbers),
		"has_email", card.Email != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Outcome{Record: card.Record(), Card: &card}, nil
}
