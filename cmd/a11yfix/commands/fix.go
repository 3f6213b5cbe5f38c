package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/a11yfix/internal/logger"
	"github.com/jmylchreest/a11yfix/internal/output"
	"github.com/jmylchreest/a11yfix/internal/version"
	"github.com/jmylchreest/a11yfix/pkg/cleaner"
	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
	"github.com/jmylchreest/a11yfix/pkg/fetcher"
	"github.com/jmylchreest/a11yfix/pkg/filter"
)

const stdinName = "-"

var fixCmd = &cobra.Command{
	Use:   "fix [file|url|-]...",
	Short: "Filter HTML files, pages or stdin",
	Long: `Run content through the accessibility filter.

Each argument is a local file, an http(s) URL or "-" for stdin. With no
arguments stdin is read. Filtered content goes to stdout unless --output or
--write is given.

Examples:
  a11yfix fix post.html > fixed.html
  curl -s https://example.edu/feed-item | a11yfix fix --hook the_excerpt
  a11yfix fix --write --stats --stats-format jsonl content/*.html
  a11yfix fix --fetch-mode dynamic --selector main https://example.edu/`,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	flags := fixCmd.Flags()

	// Filter settings
	flags.String("hook", filter.HookContent, "hook to apply: the_content, the_excerpt")
	flags.Bool("legacy", false, "read TablePress ids by position, for compatibility with the WordPress plugin")
	flags.String("tag-mode", "", "how to rewrite <b>/<i>: serialized, tree")
	flags.String("relay-host", "", "host of the video relay matched by the iframe rules")
	flags.Bool("pretty", false, "re-indent output HTML")
	flags.Bool("passthrough", false, "skip filtering (useful with --stats to diff inputs)")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout; single input only)")
	flags.BoolP("write", "w", false, "rewrite input files in place")
	flags.Bool("stats", false, "report changes per input on stderr")
	flags.String("stats-format", "text", "stats format: text, json, jsonl, yaml")

	// Fetch settings
	flags.String("fetch-mode", "static", "fetch mode for URLs: static, dynamic")
	flags.String("selector", "body", "CSS selector of the content to filter in fetched pages")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("max-size", "10MB", "max input size (e.g., 512KB, 10MB, 0=unlimited)")

	_ = viper.BindPFlag("legacy", flags.Lookup("legacy"))
	_ = viper.BindPFlag("filter.tag_mode", flags.Lookup("tag-mode"))
	_ = viper.BindPFlag("filter.relay_host", flags.Lookup("relay-host"))
	_ = viper.BindPFlag("filter.pretty", flags.Lookup("pretty"))
	_ = viper.BindPFlag("fetch.mode", flags.Lookup("fetch-mode"))
	_ = viper.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("fetch.selector", flags.Lookup("selector"))
	_ = viper.BindPFlag("max_size", flags.Lookup("max-size"))
}

// fixOptions is the resolved form of the fix flags.
type fixOptions struct {
	hook        string
	outPath     string
	write       bool
	stats       bool
	statsFormat output.Format
	maxSize     int64
	fetchMode   fetcher.Mode
	fetchOpts   fetcher.Options
}

func runFix(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, err := resolveFixOptions(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := filterConfig(viper.GetViper())
	if err != nil {
		return err
	}
	a11yCleaner := a11y.New(cfg)

	var filterCleaner cleaner.Cleaner = a11yCleaner
	if passthrough, _ := cmd.Flags().GetBool("passthrough"); passthrough {
		filterCleaner = cleaner.NewNoop()
	}

	registry := filter.NewRegistry()
	registry.RegisterDefaults(filterCleaner)
	if !registry.Has(opts.hook) {
		return fmt.Errorf("unknown hook %q (known: %s)", opts.hook, strings.Join(registry.Hooks(), ", "))
	}

	if len(args) == 0 {
		args = []string{stdinName}
	}

	var fetch fetcher.Fetcher
	defer func() {
		if fetch != nil {
			_ = fetch.Close()
		}
	}()

	var stats output.Writer
	if opts.stats {
		stats, err = output.NewWriter(cmd.ErrOrStderr(), opts.statsFormat)
		if err != nil {
			return err
		}
		defer func() { _ = stats.Close() }()
	}

	var failed int
	for _, src := range args {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isURL(src) && fetch == nil {
			fetch, err = fetcher.New(opts.fetchMode, fetcher.Config{
				UserAgent: version.UserAgent(),
				Timeout:   opts.fetchOpts.Timeout,
			})
			if err != nil {
				return err
			}
		}

		input, err := readInput(ctx, src, cmd.InOrStdin(), fetch, opts)
		if err != nil {
			logger.Error("read failed", "source", src, "error", err)
			failed++
			continue
		}

		var result *a11y.Result
		if opts.stats {
			// Observe the run so the report carries per-pass stats.
			a11yCleaner.SetObserver(func(r *a11y.Result) { result = r })
		}
		content, err := registry.Apply(opts.hook, input)
		if err != nil {
			logger.Error("filter failed", "source", src, "error", err)
			failed++
			continue
		}

		if err := writeOutput(cmd.OutOrStdout(), src, content, opts); err != nil {
			return err
		}

		if stats != nil {
			if result == nil {
				result = &a11y.Result{Content: content}
			}
			if err := stats.Write(output.NewReport(displayName(src), opts.hook, result)); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}

func resolveFixOptions(cmd *cobra.Command, args []string) (*fixOptions, error) {
	flags := cmd.Flags()
	opts := &fixOptions{}

	opts.hook, _ = flags.GetString("hook")
	opts.outPath, _ = flags.GetString("output")
	opts.write, _ = flags.GetBool("write")
	opts.stats, _ = flags.GetBool("stats")

	if opts.write && opts.outPath != "" {
		return nil, fmt.Errorf("--write and --output are mutually exclusive")
	}
	if opts.outPath != "" && len(args) > 1 {
		return nil, fmt.Errorf("--output takes a single input, got %d", len(args))
	}

	statsFormat, _ := flags.GetString("stats-format")
	format, err := output.ParseFormat(statsFormat)
	if err != nil {
		return nil, err
	}
	opts.statsFormat = format

	opts.maxSize, err = byteSize(viper.GetString("max_size"))
	if err != nil {
		return nil, err
	}

	opts.fetchMode = fetcher.Mode(viper.GetString("fetch.mode"))
	opts.fetchOpts = fetcher.Options{
		Timeout:     viper.GetDuration("fetch.timeout"),
		Selector:    viper.GetString("fetch.selector"),
		MaxBodySize: int(opts.maxSize),
	}
	return opts, nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func displayName(src string) string {
	if src == stdinName {
		return "<stdin>"
	}
	return src
}

// readInput loads one input, enforcing the size limit.
func readInput(ctx context.Context, src string, stdin io.Reader, fetch fetcher.Fetcher, opts *fixOptions) (string, error) {
	if isURL(src) {
		content, err := fetch.Fetch(ctx, src, opts.fetchOpts)
		if err != nil {
			return "", err
		}
		logger.Debug("fetched", "url", src, "status", content.StatusCode, "title", content.Title)
		return content.Body, nil
	}

	var r io.Reader = stdin
	if src != stdinName {
		f, err := os.Open(src) //#nosec G304 -- CLI tool reads user-specified input files
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	if opts.maxSize > 0 {
		r = io.LimitReader(r, opts.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if opts.maxSize > 0 && int64(len(data)) > opts.maxSize {
		return "", fmt.Errorf("input exceeds max size of %s", humanize.Bytes(uint64(opts.maxSize)))
	}
	return string(data), nil
}

// writeOutput sends filtered content to its destination.
func writeOutput(stdout io.Writer, src, content string, opts *fixOptions) error {
	switch {
	case opts.write && src != stdinName && !isURL(src):
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		if err := os.WriteFile(src, []byte(content), info.Mode().Perm()); err != nil {
			return err
		}
		logInfo("wrote %s", src)
		return nil
	case opts.outPath != "":
		return os.WriteFile(opts.outPath, []byte(content), 0o644) //#nosec G306 -- output is public page content
	default:
		_, err := io.WriteString(stdout, content)
		return err
	}
}
