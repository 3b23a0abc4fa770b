package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/arbiter"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/extract"
	"github.com/joseph-ayodele/cardscan/internal/gazetteer"
	"github.com/joseph-ayodele/cardscan/internal/ner"
)

// RuleStrategy runs the pattern extractors, the recognizer and the gazetteer over
// the text and merges their output with the arbiter. A failing recognizer or
// gazetteer contributes nothing; the run carries on with the other sources.
type RuleStrategy struct {
	recognizer ner.Recognizer
	places     PlaceResolver
	stoplist   []string
	concurrent bool
	logger     *slog.Logger
}

type RuleOption func(*RuleStrategy)

// WithConcurrency runs the three detectors in parallel. On by default.
func WithConcurrency(on bool) RuleOption {
	return func(s *RuleStrategy) { s.concurrent = on }
}

// WithAddressStoplist overrides the names dropped from address candidates.
func WithAddressStoplist(names []string) RuleOption {
	return func(s *RuleStrategy) { s.stoplist = names }
}

// NewRuleStrategy wires the detectors. A nil recognizer or resolver yields empty results.
func NewRuleStrategy(recognizer ner.Recognizer, places PlaceResolver, logger *slog.Logger, opts ...RuleOption) *RuleStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RuleStrategy{
		recognizer: recognizer,
		places:     places,
		concurrent: true,
		logger:     logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RuleStrategy) Name() string { return constants.StrategyRules }

func (s *RuleStrategy) Restructure(ctx context.Context, text string) (Outcome, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	var (
		cands    extract.Candidates
		entities []ner.Entity
		places   gazetteer.Places
		nerErr   error
		gazErr   error
	)
	steps := []func(context.Context){
		func(context.Context) { cands = extract.All(text) },
		func(ctx context.Context) { entities, nerErr = s.recognize(ctx, text) },
		func(ctx context.Context) { places, gazErr = s.lookup(ctx, text) },
	}

	if s.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for _, step := range steps {
			g.Go(func() error {
				step(gctx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, step := range steps {
			step(ctx)
		}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var degraded []string
	if nerErr != nil {
		degraded = append(degraded, "ner")
		s.logger.Warn("pipeline.rules.degraded", "req_id", rid, "source", "ner", "error", nerErr)
		entities = []ner.Entity{}
	}
	if gazErr != nil {
		degraded = append(degraded, "gazetteer")
		s.logger.Warn("pipeline.rules.degraded", "req_id", rid, "source", "gazetteer", "error", gazErr)
		places = gazetteer.Places{Cities: []string{}, Countries: []string{}}
	}

	derived := ner.Derive(entities)
	addresses := extract.FilterAddresses(cands.Addresses, derived.Locations, s.stoplist)
	record := arbiter.Merge(arbiter.Inputs{Candidates: cands, Entities: derived, Places: places})

	s.logger.Info("pipeline.rules.ok",
		"req_id", rid,
		"emails", len(cands.Emails),
		"phones", len(cands.Phones),
		"entities", len(entities),
		"addresses", len(addresses),
		"cities", len(places.Cities),
		"concurrent", s.concurrent,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Outcome{
		Record: record,
		Extraction: &Extraction{
			Candidates:  cands,
			Entities:    entities,
			AgentName:   derived.AgentName,
			CompanyName: derived.CompanyName,
			Addresses:   addresses,
			Address:     extract.JoinAddress(addresses),
			Places:      places,
			Degraded:    degraded,
		},
	}, nil
}

func (s *RuleStrategy) recognize(ctx context.Context, text string) ([]ner.Entity, error) {
	if s.recognizer == nil {
		return []ner.Entity{}, nil
	}
	ents, err := s.recognizer.Recognize(ctx, text)
	if err != nil {
		return nil, err
	}
	return ner.Filter(ents), nil
}

func (s *RuleStrategy) lookup(ctx context.Context, text string) (gazetteer.Places, error) {
	if s.places == nil {
		return gazetteer.Places{Cities: []string{}, Countries: []string{}}, nil
	}
	p, err := s.places.Lookup(ctx, text)
	if err != nil {
		return gazetteer.Places{}, err
	}
	if p.Cities == nil {
		p.Cities = []string{}
	}
	if p.Countries == nil {
		p.Countries = []string{}
	}
	return p, nil
}
