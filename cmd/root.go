package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/agentic-research/litgrep/internal/config"
	"github.com/agentic-research/litgrep/internal/lang"
	"github.com/agentic-research/litgrep/internal/preview"
	"github.com/agentic-research/litgrep/internal/report"
	"github.com/agentic-research/litgrep/internal/search"
	"github.com/agentic-research/litgrep/internal/source"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Tests build their own so flag state
// does not leak between runs.
func newRootCmd() *cobra.Command {
	var (
		configPath string
		query      string
		colorize   bool
		noColor    bool
		lenient    bool
		noSkip     bool
	)

	cmd := &cobra.Command{
		Use:   "litgrep [query]",
		Short: "litgrep: find the string or template literal that produced a string",
		Long: `litgrep parses every source file under a directory and reports the string
literals containing the query and the template literals that could have
produced it, e.g. "user 42 logged in" finds` + " `user ${id} logged in`.",
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			switch {
			case len(args) == 1:
				overrides["query"] = args[0]
			case query != "":
				overrides["query"] = query
			}
			if lenient {
				overrides["strict"] = false
			}
			if noSkip {
				overrides["skip_dirs"] = []string{}
			}
			switch {
			case noColor:
				overrides["color"] = config.ColorNever
			case colorize:
				overrides["color"] = config.ColorAlways
			}

			cfg, err := config.Load(config.LoadOptions{
				ConfigFile: configPath,
				Flags:      cmd.Flags(),
				Overrides:  overrides,
			})
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&query, "string", "", "string to reverse search for (alternative to the positional argument)")
	f.StringP("directory", "d", "", "where to search (default: current directory)")
	f.IntP("context", "C", preview.DefaultContext, "lines to show above and below matches")
	f.String("language", lang.Default, fmt.Sprintf("grammar to parse with %v", lang.Names()))
	f.StringSlice("ext", nil, "file extensions to search (default: the language's own)")
	f.String("format", config.FormatText, "output format: text, json or jsonl")
	f.StringSlice("skip-dir", source.DefaultSkipDirs, "directory names not to descend into")
	f.BoolVar(&noSkip, "no-skip", false, "descend into every directory")
	f.Bool("fail-fast", false, "stop at the first file that cannot be read or parsed")
	f.BoolVar(&lenient, "lenient", false, "search files even when they contain syntax errors")
	f.BoolVar(&colorize, "color", false, "force colored output")
	f.BoolVar(&noColor, "no-color", false, "disable colored output")

	pf := cmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default: .litgrep.yaml in the search root or working directory)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd())
	return cmd
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{Prefix: "litgrep", Level: lvl}), nil
}

// useColor resolves the color mode. In auto mode escape codes are only
// written to a terminal stdout.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return out == io.Writer(os.Stdout) && !color.NoColor
	}
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, logger *log.Logger) error {
	language, err := cfg.ResolveLanguage()
	if err != nil {
		return err
	}
	fsys := source.Open(cfg.Directory)
	engine := search.NewEngine(fsys, language,
		search.WithLogger(logger),
		search.WithSkipDirs(cfg.SkipDirs),
		search.WithStrict(cfg.Strict),
		search.WithFailFast(cfg.FailFast),
	)

	switch cfg.Format {
	case config.FormatJSON, config.FormatJSONLines:
		w := report.NewWriter(out, cfg.Format == config.FormatJSONLines)
		for hit, err := range engine.Search(ctx, cfg.Query) {
			if err != nil {
				return err
			}
			if err := w.Add(hit); err != nil {
				return err
			}
		}
		if err := w.Close(); err != nil {
			return err
		}
	default:
		load := func(name string) ([]byte, error) { return source.Read(fsys, name) }
		r := preview.NewRenderer(out, cfg.Context, load, useColor(cfg.Color, out))
		for hit, err := range engine.Search(ctx, cfg.Query) {
			if err != nil {
				return err
			}
			if err := r.Render(hit); err != nil {
				return err
			}
		}
		if err := r.Done(); err != nil {
			return err
		}
	}

	st := engine.Stats()
	logger.Info("search finished", "files", st.Files, "matched", st.Matched, "hits", st.Hits, "skipped", st.Skipped)
	return nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
