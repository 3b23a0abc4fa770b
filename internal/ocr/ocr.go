// Package ocr turns card images into text by running tesseract.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	Lang        string // default "eng"

	PSM int // page segmentation mode; 0 leaves tesseract's default. 11 suits sparse card layouts
	OEM int // 1 = LSTM; leave 0 to use default

	EnableTSVConfidence bool
	Timeout             time.Duration // per image; 0 = no limit
}

// FromAppConfig copies the OCR section of the application config.
func FromAppConfig(c common.OCRConfig) Config {
	return Config{
		Tesseract:   c.Tesseract,
		TessdataDir: c.TessdataDir,
		Lang:        c.Lang,
		PSM:         c.PSM,
		Timeout:     c.Timeout,
	}
}

type ExtractionResult struct {
	Text        string
	ContentType string
	Language    string
	Duration    time.Duration
	Warnings    []string
	Confidence  float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the process runner, mainly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ExtractText returns the normalized text of a card image. A blank card yields "".
func (e *Extractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	res, err := e.Extract(ctx, image)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Extract writes the image to a temp file and runs tesseract on it.
func (e *Extractor) Extract(ctx context.Context, image []byte) (ExtractionResult, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	if len(image) == 0 {
		return ExtractionResult{}, common.NewAppError(common.CodeOCRFailed, "empty image", common.ErrInvalidInput)
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	ctype := http.DetectContentType(image)
	path, cleanup, err := writeTemp(image, extForContentType(ctype))
	if err != nil {
		e.logger.Error("ocr.tempfile.error", "req_id", rid, "error", err)
		return ExtractionResult{}, common.NewAppError(common.CodeOCRFailed, "stage image", err)
	}
	defer cleanup()

	e.logger.Debug("ocr.tesseract.start", "req_id", rid, "content_type", ctype, "bytes", len(image))

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path, false)...)
	if err != nil {
		e.logger.Error("ocr.tesseract.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return ExtractionResult{ContentType: ctype, Warnings: []string{string(errb)}},
			common.NewAppError(common.CodeOCRFailed, "tesseract", err)
	}
	txt := Normalize(string(out))

	var warns []string
	var engineConf float32
	if e.cfg.EnableTSVConfidence {
		if tsv, tsvErr, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path, true)...); err == nil {
			engineConf = meanTSVConfidence(string(tsv))
		} else {
			warns = append(warns, fmt.Sprintf("tsv confidence: %v: %s", err, tsvErr))
		}
	}

	res := ExtractionResult{
		Text:        txt,
		ContentType: ctype,
		Language:    e.cfg.Lang,
		Duration:    time.Since(start),
		Warnings:    warns,
		Confidence:  blendConfidence(engineConf, heuristicConfidence(txt)),
	}
	e.logger.Info("ocr.tesseract.ok",
		"req_id", rid,
		"text_len", len(txt),
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// args builds: tesseract <file> stdout -l <lang> [--psm N] [--oem N] [--tessdata-dir D] [tsv]
func (e *Extractor) args(path string, tsv bool) []string {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if tsv {
		args = append(args, "tsv")
	}
	return args
}

func writeTemp(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "cardscan-*"+ext)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}

func extForContentType(ctype string) string {
	switch ctype {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	case "image/tiff":
		return ".tif"
	case "image/gif":
		return ".gif"
	default:
		return ".img"
	}
}
