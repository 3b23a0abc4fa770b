package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		if code := common.ErrorCode(err); code != "" {
			printError("Error [%s]: %v\n", code, err)
		} else {
			printError("Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfg    *common.Config
	logger *slog.Logger

	strategy string
	ner      string
	logLevel string
	verbose  bool

	// extra wiring, used by tests to stub OCR and the LLM
	buildOpts []pipeline.BuildOption
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cardscan",
		Short:         "Extract contact records from business card images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.strategy, "strategy", "", "restructuring strategy: rules | llm (default $CARDSCAN_STRATEGY or rules)")
	pf.StringVar(&a.ner, "ner", "", "entity recognizer for the rules strategy: rules | prose (default $NER_BACKEND or rules)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug | info | warn | error (default $LOG_LEVEL or info)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "include the request id and the extraction trace in the output")

	root.AddCommand(newScanCmd(a), newTextCmd(a), newBatchCmd(a), newWatchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := common.LoadConfig()
	if cmd.Flags().Changed("strategy") {
		cfg.Pipeline.Strategy = a.strategy
	}
	if cmd.Flags().Changed("ner") {
		cfg.Pipeline.NERBackend = a.ner
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return common.NewAppError(common.CodeConfig, fmt.Sprintf("invalid log level %q", cfg.LogLevel), err)
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	if err := cfg.Validate(); err != nil {
		a.logger.Error("config.invalid", "error", err)
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) processor(ctx context.Context) (*pipeline.Processor, error) {
	return pipeline.Build(ctx, a.cfg, a.logger, a.buildOpts...)
}

// output is the JSON printed for one card.
type output struct {
	pipeline.Response
	Source     string               `json:"source,omitempty"`
	RequestID  string               `json:"request_id,omitempty"`
	Extraction *pipeline.Extraction `json:"extraction,omitempty"`
}

func (a *app) render(res pipeline.Result, source string) output {
	out := output{Response: res.Response(), Source: source}
	if a.verbose {
		out.RequestID = res.RequestID
		out.Extraction = res.Extraction
	}
	return out
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
