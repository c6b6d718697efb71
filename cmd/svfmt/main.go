package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/svfmt/svfmt/pkg/lsp"
	"github.com/svfmt/svfmt/pkg/svelte"
)

// Config holds the command-line configuration.
type Config struct {
	Debug      bool
	Write      bool
	List       bool
	Diff       bool
	LSP        bool
	LSPLogFile string
	ConfigFile string
	PrintWidth int
	UseTabs    bool
	Strict     bool
}

// defaultConfigFile is picked up from the working directory when --config
// is not given.
const defaultConfigFile = "svfmt.toml"

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "svfmt [flags] [path...]",
		Short: "Svelte component formatter",
		Long: `svfmt pretty-prints Svelte component files: markup is re-wrapped to the
configured width, attributes and directives are normalized, and embedded
script and style regions are preserved (or handed to registered
sublanguage formatters).`,
		Example: `  # Print the formatted component to stdout
  svfmt App.svelte

  # Rewrite files in place
  svfmt -w src/

  # List files that are not formatted
  svfmt -l src/

  # Show what would change
  svfmt --diff App.svelte

  # Run as a language server over stdio
  svfmt --lsp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg.Debug, os.Stderr)

			opts, err := loadOptions(cmd, cfg)
			if err != nil {
				return err
			}

			if cfg.LSP {
				return runLSP(cmd.Context(), cfg, opts)
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return runFormat(cmd.Context(), cfg, opts, args)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&cfg.Write, "write", "w", false, "Write result to source file instead of stdout")
	rootCmd.Flags().BoolVarP(&cfg.List, "list", "l", false, "List files whose formatting differs")
	rootCmd.Flags().BoolVar(&cfg.Diff, "diff", false, "Display diffs instead of rewriting files")
	rootCmd.Flags().BoolVar(&cfg.LSP, "lsp", false, "Run in Language Server Protocol mode")
	rootCmd.Flags().StringVar(&cfg.LSPLogFile, "lsp-log-file", "", "Path to LSP log file (stderr if not specified)")
	rootCmd.Flags().StringVar(&cfg.ConfigFile, "config", "", "Path to svfmt.toml config file")
	rootCmd.Flags().IntVar(&cfg.PrintWidth, "print-width", 0, "Target line width (overrides config)")
	rootCmd.Flags().BoolVar(&cfg.UseTabs, "use-tabs", false, "Indent with tabs (overrides config)")
	rootCmd.Flags().BoolVar(&cfg.Strict, "strict", false, "Strict mode: quote expressions, restrict self-closing")

	rootCmd.AddCommand(astCmd())

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool, dest io.Writer) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(dest, &slog.HandlerOptions{
		Level: level,
	})))
}

// loadOptions resolves formatter options from the config file and flag
// overrides.
func loadOptions(cmd *cobra.Command, cfg Config) (svelte.Options, error) {
	opts := svelte.DefaultOptions()

	path := cfg.ConfigFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		var err error
		opts, err = svelte.LoadOptions(path)
		if err != nil {
			return opts, err
		}
		slog.Debug("loaded config", "path", path)
	}

	if cmd.Flags().Changed("print-width") {
		opts.PrintWidth = cfg.PrintWidth
	}
	if cmd.Flags().Changed("use-tabs") {
		opts.UseTabs = cfg.UseTabs
	}
	if cmd.Flags().Changed("strict") {
		opts.StrictMode = cfg.Strict
	}
	return opts, nil
}

type formatResult struct {
	path      string
	original  string
	formatted string
}

func runFormat(ctx context.Context, cfg Config, opts svelte.Options, paths []string) error {
	files, err := collectFiles(paths)
	if err != nil {
		return err
	}

	results := make([]formatResult, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			formatted, err := svelte.FormatFile(file, string(source), opts)
			if err != nil {
				return fmt.Errorf("formatting %s: %w", file, err)
			}
			results[i] = formatResult{path: file, original: string(source), formatted: formatted}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		if err := emit(cfg, res); err != nil {
			return err
		}
	}
	return nil
}

func emit(cfg Config, res formatResult) error {
	changed := res.original != res.formatted

	switch {
	case cfg.List:
		if changed {
			fmt.Println(res.path)
		}
	case cfg.Diff:
		if changed {
			return printDiff(os.Stdout, res)
		}
	case cfg.Write:
		if changed {
			if err := os.WriteFile(res.path, []byte(res.formatted), 0644); err != nil {
				return err
			}
			slog.Debug("rewrote", "path", res.path)
		}
	default:
		fmt.Print(res.formatted)
	}
	return nil
}

var (
	diffAddStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	diffDelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	diffHdrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func printDiff(w io.Writer, res formatResult) error {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.original),
		B:        difflib.SplitLines(res.formatted),
		FromFile: res.path,
		ToFile:   res.path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return err
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(w, diffAddStyle.Render(strings.TrimSuffix(line, "\n"))+"\n")
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(w, diffDelStyle.Render(strings.TrimSuffix(line, "\n"))+"\n")
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(w, diffHdrStyle.Render(strings.TrimSuffix(line, "\n"))+"\n")
		default:
			fmt.Fprint(w, line)
		}
	}
	return nil
}

// collectFiles expands the path arguments: directories are walked for
// .svelte files, explicit files are taken as-is.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "node_modules" || (strings.HasPrefix(d.Name(), ".") && p != path) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".svelte") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return files, nil
}

func runLSP(ctx context.Context, cfg Config, opts svelte.Options) error {
	var logDest io.Writer = os.Stderr
	if cfg.LSPLogFile != "" {
		logFile, err := os.Create(cfg.LSPLogFile)
		if err != nil {
			return fmt.Errorf("open lsp log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	}
	setupLogging(cfg.Debug, logDest)
	logger := slog.Default()

	logger.InfoContext(ctx, "starting LSP server")

	h := lsp.NewHandler(opts)
	srv := jrpc2.NewServer(h.Assigner(), &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})
	h.SetServer(srv)

	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
