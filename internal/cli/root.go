// Package cli implements the council command: flag parsing, config
// resolution, gateway construction, and output-mode selection around one
// deliberation run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dshills/council-go/council"
	"github.com/dshills/council-go/council/emit"
	"github.com/dshills/council-go/council/model"
	"github.com/dshills/council-go/council/model/anthropic"
	"github.com/dshills/council-go/council/model/google"
	"github.com/dshills/council-go/council/model/openai"
	"github.com/dshills/council-go/council/model/openrouter"
	"github.com/dshills/council-go/internal/config"
	"github.com/dshills/council-go/internal/files"
	"github.com/dshills/council-go/internal/output"
)

var (
	flagJSON       bool
	flagMarkdown   bool
	flagAnswerOnly bool
	flagQuiet      bool
	flagDebug      bool
	flagConfig     string
	flagModels     string
	flagChairman   string
	flagFiles      []string
	flagIncludes   []string
	flagTimeout    time.Duration
)

// NewRootCmd builds the council root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "council [query]",
		Short: "Multi-LLM deliberation via OpenRouter",
		Long: `Ask a question to a council of LLMs.

The council members each answer individually, then anonymously rank each
other's responses, and a chairman model synthesizes the final answer.

Agent-friendly: when stdout is piped, output is JSON automatically;
progress and errors go to stderr, keeping stdout clean for parsing.

Examples:
  council "What is the meaning of life?"
  echo "Explain quantum computing" | council
  council --json "Compare Go and Rust" > result.json
  council -a "Quick question" | pbcopy
  council -f main.go -f README.md "Review this code"
  council -i "src/**/*.go" "Analyze this codebase"`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCouncil,
	}

	cmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&flagMarkdown, "markdown", "m", false, "Output results as Markdown")
	cmd.Flags().BoolVarP(&flagAnswerOnly, "answer-only", "a", false, "Output only the final synthesized answer")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output, show only the final result")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Log pipeline events to stderr")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (default: ~/"+config.FileName+")")
	cmd.Flags().StringVar(&flagModels, "models", "", "Comma-separated council models (overrides config)")
	cmd.Flags().StringVar(&flagChairman, "chairman", "", "Chairman model (overrides config)")
	cmd.Flags().StringArrayVarP(&flagFiles, "file", "f", nil, "Include file contents in the prompt (repeatable)")
	cmd.Flags().StringArrayVarP(&flagIncludes, "include", "i", nil, "Include files matching a glob pattern (repeatable)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Per-call timeout (overrides config)")

	return cmd
}

// Execute runs the root command with SIGINT/SIGTERM wired to context
// cancellation and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(version)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted")
			return 130
		}
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return 1
	}
	return 0
}

func runCouncil(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	prompt, err := files.BuildPrompt(query, flagFiles, flagIncludes)
	if err != nil {
		return err
	}

	var modelsOverride []string
	if flagModels != "" {
		for _, m := range strings.Split(flagModels, ",") {
			modelsOverride = append(modelsOverride, strings.TrimSpace(m))
		}
	}
	cfg, err := config.Load(flagConfig, config.Overrides{
		Models:   modelsOverride,
		Chairman: flagChairman,
		Timeout:  flagTimeout,
	})
	if err != nil {
		return err
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	useJSON := flagJSON || (!stdoutTTY && !flagMarkdown && !flagAnswerOnly)
	useRich := !useJSON && !flagMarkdown && !flagAnswerOnly && stdoutTTY

	opts := []council.Option{}
	if flagDebug {
		opts = append(opts, council.WithEmitter(emit.NewLogEmitter(os.Stderr, false)))
	}
	renderer := output.NewRenderer(os.Stderr, len(cfg.CouncilModels), flagQuiet)
	if useRich {
		opts = append(opts, council.WithObserver(renderer))
	}

	c, err := council.New(client, cfg.CouncilModels, cfg.ChairmanModel, opts...)
	if err != nil {
		return err
	}

	if useRich {
		renderer.RunStart()
	}

	result, err := c.Deliberate(cmd.Context(), prompt)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return context.Canceled
		case errors.Is(err, council.ErrNoResponses):
			return fmt.Errorf("stage 1: %w", err)
		case errors.Is(err, council.ErrSynthesisFailed):
			return fmt.Errorf("stage 3: %w", err)
		default:
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case flagAnswerOnly:
		if result.Stage3 != nil {
			fmt.Fprintln(out, result.Stage3.Response)
		}
	case useJSON:
		doc, err := output.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doc)
	case flagMarkdown:
		fmt.Fprint(out, output.FormatMarkdown(result))
	}
	// Rich mode already rendered progressively via the observer.
	return nil
}

// readQuery takes the query from the argument, or from stdin when piped.
func readQuery(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", errors.New("no query provided; pass as argument or pipe via stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", errors.New("no query provided; pass as argument or pipe via stdin")
	}
	return query, nil
}

// buildClient assembles the model gateway: OpenRouter when its key is
// configured, otherwise direct provider adapters routed by prefix.
func buildClient(cfg *config.Config) (model.Client, error) {
	if cfg.APIKey != "" {
		return openrouter.New(cfg.APIKey,
			openrouter.WithBaseURL(cfg.BaseURL),
			openrouter.WithTimeout(cfg.Timeout),
		)
	}

	router := model.NewRouter(nil)
	registered := false
	if cfg.OpenAIAPIKey != "" {
		c, err := openai.New(cfg.OpenAIAPIKey, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		router.Register("openai", c)
		registered = true
	}
	if cfg.AnthropicAPIKey != "" {
		c, err := anthropic.New(cfg.AnthropicAPIKey, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		router.Register("anthropic", c)
		registered = true
	}
	if cfg.GoogleAPIKey != "" {
		c, err := google.New(cfg.GoogleAPIKey, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		router.Register("google", c)
		registered = true
	}
	if !registered {
		return nil, errors.New("no usable API key configured")
	}
	return router, nil
}
