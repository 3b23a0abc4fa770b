package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/gazetteer"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/llm/openai"
	"github.com/joseph-ayodele/cardscan/internal/ner"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
)

type buildOptions struct {
	textSource TextSource
	completer  llm.Completer
}

type BuildOption func(*buildOptions)

// WithTextSource replaces the tesseract extractor.
func WithTextSource(ts TextSource) BuildOption {
	return func(o *buildOptions) { o.textSource = ts }
}

// WithCompleter replaces the OpenAI client used by the llm strategy.
func WithCompleter(c llm.Completer) BuildOption {
	return func(o *buildOptions) { o.completer = c }
}

// Build assembles a Processor from configuration.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts ...BuildOption) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	ts := o.textSource
	if ts == nil {
		ts = ocr.NewExtractor(ocr.FromAppConfig(cfg.OCR), logger)
	}

	var strategy Strategy
	switch cfg.Pipeline.Strategy {
	case constants.StrategyRules, "":
		s, err := buildRules(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		strategy = s
	case constants.StrategyLLM:
		c := o.completer
		if c == nil {
			c = openai.NewClient(openai.FromAppConfig(cfg.LLM), logger)
		}
		strategy = NewLLMStrategy(c, logger)
	default:
		return nil, common.NewAppError(common.CodeUnsupportedBackend,
			fmt.Sprintf("unknown strategy %q", cfg.Pipeline.Strategy), common.ErrInvalidInput)
	}

	logger.Info("pipeline.build.ok", "strategy", strategy.Name(), "ner", cfg.Pipeline.NERBackend)
	return NewProcessor(ts, strategy, logger), nil
}

func buildRules(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*RuleStrategy, error) {
	lex, err := gazetteer.Load(ctx, cfg.Gazetteer)
	if err != nil {
		logger.Warn("pipeline.rules.degraded", "source", "gazetteer", "error", err)
		lex = gazetteer.Lexicon{}
	}
	resolver := gazetteer.NewResolver(lex, logger)

	var recognizer ner.Recognizer
	switch cfg.Pipeline.NERBackend {
	case constants.NERRules, "":
		recognizer = ner.NewRuleRecognizer(ner.WithPlaces(PlaceFinder(resolver)))
	case constants.NERProse:
		pr, err := ner.NewProseRecognizer(logger)
		if err != nil {
			logger.Warn("pipeline.rules.degraded", "source", "ner", "error", err)
		} else {
			recognizer = pr
		}
	default:
		return nil, common.NewAppError(common.CodeUnsupportedBackend,
			fmt.Sprintf("unknown NER backend %q", cfg.Pipeline.NERBackend), common.ErrInvalidInput)
	}

	return NewRuleStrategy(recognizer, resolver, logger,
		WithConcurrency(cfg.Pipeline.Concurrent),
		WithAddressStoplist(cfg.Pipeline.AddressStoplist),
	), nil
}

// PlaceFinder exposes gazetteer matches to the rule recognizer as GPE spans.
func PlaceFinder(r *gazetteer.Resolver) ner.PlaceFinder {
	return func(text string) []ner.Span {
		matches := r.Matches(text)
		spans := make([]ner.Span, len(matches))
		for i, m := range matches {
			spans[i] = ner.Span{Text: m.Name, Start: m.Start}
		}
		return spans
	}
}
