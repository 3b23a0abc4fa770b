package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
)

// Processor coordinates OCR then the configured restructuring strategy.
type Processor struct {
	logger   *slog.Logger
	ocr      TextSource
	strategy Strategy
}

func NewProcessor(ocr TextSource, strategy Strategy, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, ocr: ocr, strategy: strategy}
}

// StrategyName reports which strategy the processor runs.
func (p *Processor) StrategyName() string { return p.strategy.Name() }

// Process checks that image is an image, reads its text and restructures it.
// Anything other than image bytes fails with ErrInvalidInputType before OCR runs.
func (p *Processor) Process(ctx context.Context, image []byte) (Result, error) {
	ctx, rid := withRequestID(ctx)
	start := time.Now()
	src := common.SourceNameFromContext(ctx)

	ctype := SniffContentType(image)
	if !strings.HasPrefix(ctype, "image/") {
		p.logger.Error("pipeline.process.invalid_type", "req_id", rid, "source", src, "content_type", ctype)
		return Result{RequestID: rid}, common.NewAppError(common.CodeInvalidInputType,
			constants.InvalidFileTypeMessage, fmt.Errorf("%w: %s", common.ErrInvalidInputType, ctype))
	}
	if p.ocr == nil {
		return Result{RequestID: rid}, common.NewAppError(common.CodeOCRFailed, "no text source configured", common.ErrInternal)
	}

	p.logger.Info("pipeline.process.start", "req_id", rid, "source", src, "content_type", ctype, "bytes", len(image))
	text, err := p.ocr.ExtractText(ctx, image)
	if err != nil {
		p.logger.Error("pipeline.process.ocr_failed", "req_id", rid, "source", src, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return Result{RequestID: rid}, err
	}
	p.logger.Debug("pipeline.process.ocr_ok", "req_id", rid, "text_len", len(text))

	return p.restructure(ctx, rid, text, start)
}

// ProcessText restructures text that was already extracted.
func (p *Processor) ProcessText(ctx context.Context, text string) (Result, error) {
	ctx, rid := withRequestID(ctx)
	return p.restructure(ctx, rid, text, time.Now())
}

func (p *Processor) restructure(ctx context.Context, rid, text string, start time.Time) (Result, error) {
	res := Result{RequestID: rid, Strategy: p.strategy.Name(), ExtractedText: text}

	out, err := p.strategy.Restructure(ctx, text)
	if err != nil {
		p.logger.Error("pipeline.process.failed",
			"req_id", rid, "strategy", res.Strategy, "code", common.ErrorCode(err), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return res, err
	}

	res.Message = messageFor(res.Strategy)
	res.Record = out.Record
	res.Extraction = out.Extraction
	res.Card = out.Card
	p.logger.Info("pipeline.process.ok",
		"req_id", rid,
		"strategy", res.Strategy,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func withRequestID(ctx context.Context) (context.Context, string) {
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		return ctx, rid
	}
	rid := uuid.New().String()
	return common.WithRequestID(ctx, rid), rid
}

// SniffContentType extends http.DetectContentType with TIFF, which scanners emit.
func SniffContentType(b []byte) string {
	if bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*")) {
		return "image/tiff"
	}
	return http.DetectContentType(b)
}
