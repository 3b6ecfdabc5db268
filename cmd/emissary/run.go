package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/config"
	"github.com/azdolinski/emissary/internal/executor"
	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/page"
	"github.com/azdolinski/emissary/internal/report"
	"github.com/azdolinski/emissary/internal/runner"
	"github.com/azdolinski/emissary/internal/transport"
)

// errActionsFailed is returned when a run completed but at least one
// action failed, so that the exit status reflects it.
var errActionsFailed = errors.New("one or more actions failed")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [profile...]",
		Short: "Run one or more profiles",
		Long: `Run executes every action of a profile in order and prints a report.

Without a profile argument the selected profile is run (see 'emissary select').
Parameters and message default to the input saved by the previous run; a run in
which every action succeeds clears them.

Parameters are comma-separated key=value pairs. Action URLs, headers and data
may reference them as %key%. The reserved keys text_box, page_name, page_url and
page_content always hold the message and page context. Header and data values
may also use $message, $url, $page_title and $page_content.

Hashtags in the message (#news) are added to the stored tag set before any
action runs.

Examples:
  # Run the selected profile with parameters and a message
  emissary run -p "id=42, lang=en" -m "New release #golang"

  # Run a profile by name against a page
  emissary run blog --page-url https://example.com/post --page-title "A post"

  # Fetch the page to fill in its title and visible text
  emissary run blog --page-url https://example.com/post --fetch-page

  # Share the page: the message gets a [title](url) link appended
  emissary run blog -m "Worth a read" --page-url https://example.com/post --fetch-page --insert-link

  # Run all enabled profiles, three at a time, and save a Markdown report
  emissary run --all --concurrency 3 --format markdown -o report.md`,
		Args: cobra.ArbitraryArgs,
		RunE: withApp(runRunCmd),
	}

	cmd.Flags().StringP("params", "p", "", "Parameters as key=value pairs separated by commas")
	cmd.Flags().StringP("message", "m", "", "Free-text message; #hashtags are recorded as tags")

	cmd.Flags().String("page-url", "", "URL of the page the run refers to")
	cmd.Flags().String("page-title", "", "Title of the page")
	cmd.Flags().String("page-content", "", "Content of the page")
	cmd.Flags().String("page-content-file", "", "Read page content from a file (- for stdin)")
	cmd.Flags().Bool("fetch-page", false, "Download --page-url to fill in title and content")
	cmd.Flags().Bool("insert-link", false, "Append a Markdown link [title](url) to the page to the message")

	cmd.Flags().Bool("all", false, "Run every enabled profile")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "Profiles run at once with several profiles")

	cmd.Flags().String("format", config.DefaultReportFormat, "Report format: text, html, json or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file (creates directories if needed)")

	cmd.MarkFlagsMutuallyExclusive("page-content", "page-content-file")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string, a *app) error {
	if err := applyRunFlags(cmd, a.cfg); err != nil {
		return err
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	if all && len(args) > 0 {
		return errors.New("--all cannot be combined with profile arguments")
	}

	ctx := cmd.Context()

	client, err := transport.NewClient(a.cfg.TransportOptions())
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}
	if a.cfg.Proxy != "" {
		status := transport.CheckProxy(ctx, a.cfg.Proxy)
		if status != transport.ProxyStatusOK {
			return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s)",
				status, a.cfg.Proxy)
		}
		a.logger.Info("proxy connection verified", "address", a.cfg.Proxy)
	}

	exec := executor.New(client,
		executor.WithLogger(a.logger),
		executor.WithUserAgent(a.cfg.UserAgent),
		executor.WithMaxBodySize(a.cfg.MaxBodySize),
	)
	r := runner.New(exec, a.db,
		runner.WithLogger(a.logger),
		runner.WithLockTTL(a.cfg.LockTTL),
	)

	req, err := buildRequest(cmd, client, a.logger)
	if err != nil {
		return err
	}

	w, closeOutput, err := newReportWriter(cmd.OutOrStdout(), a.cfg)
	if err != nil {
		return err
	}
	defer closeOutput()

	if all {
		profiles, err := a.repo.Profiles(ctx)
		if err != nil {
			return err
		}
		for _, p := range model.EnabledProfiles(profiles) {
			args = append(args, p.ID)
		}
		if len(args) == 0 {
			return errors.New("no enabled profiles")
		}
	}

	if len(args) <= 1 {
		req.Profile = ""
		if len(args) == 1 {
			req.Profile = args[0]
		}
		rep, err := r.Run(ctx, req)
		if rep != nil {
			if _, werr := w.Write(rep); werr != nil {
				return fmt.Errorf("failed to write report: %w", werr)
			}
		}
		if err != nil {
			return err
		}
		if !rep.AllSucceeded() {
			return errActionsFailed
		}
		return nil
	}

	return runBatch(cmd, r, w, args, req, a.cfg.Concurrency)
}

// runBatch runs several profiles and writes each report as it is collected.
func runBatch(cmd *cobra.Command, r *runner.Runner, w report.Writer, refs []string, req runner.Request, concurrency int) error {
	results, err := r.RunBatch(cmd.Context(), refs, req, concurrency)

	var notRun, failed int
	for _, res := range results {
		if res.Report != nil {
			if _, werr := w.Write(res.Report); werr != nil {
				return fmt.Errorf("failed to write report: %w", werr)
			}
			if !res.Report.AllSucceeded() {
				failed++
			}
		}
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Profile, res.Err)
			notRun++
		}
	}

	if err != nil {
		return err
	}
	if notRun > 0 {
		return fmt.Errorf("%d of %d profiles could not run", notRun, len(results))
	}
	if failed > 0 {
		return errActionsFailed
	}
	return nil
}

// applyRunFlags layers run flags that mirror configuration keys.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("format") {
		if cfg.ReportFormat, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

// buildRequest collects the run input from flags. Params and message
// left unset fall back to the stored input.
func buildRequest(cmd *cobra.Command, client *http.Client, logger *slog.Logger) (runner.Request, error) {
	flags := cmd.Flags()
	var req runner.Request

	if flags.Changed("params") {
		v, err := flags.GetString("params")
		if err != nil {
			return req, err
		}
		req.Params = &v
	}
	if flags.Changed("message") {
		v, err := flags.GetString("message")
		if err != nil {
			return req, err
		}
		req.Message = &v
	}

	insertLink, err := flags.GetBool("insert-link")
	if err != nil {
		return req, err
	}
	req.InsertLink = insertLink

	pageURL, err := flags.GetString("page-url")
	if err != nil {
		return req, err
	}
	title, err := flags.GetString("page-title")
	if err != nil {
		return req, err
	}
	content, err := flags.GetString("page-content")
	if err != nil {
		return req, err
	}
	contentFile, err := flags.GetString("page-content-file")
	if err != nil {
		return req, err
	}
	if contentFile != "" {
		if content, err = readContent(cmd, contentFile); err != nil {
			return req, err
		}
	}

	fetch, err := flags.GetBool("fetch-page")
	if err != nil {
		return req, err
	}
	if fetch {
		if pageURL == "" {
			return req, errors.New("--fetch-page requires --page-url")
		}
		f := page.NewFetcher(client, pageURL, logger)
		f.Title = title
		f.Content = content
		req.Page = f
		return req, nil
	}

	req.Page = page.Static{Title: title, URL: pageURL, Content: content}
	return req, nil
}

// readContent reads page content from path, or stdin for "-".
func readContent(cmd *cobra.Command, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path) //nolint:gosec // User-provided path is intentional
	}
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return string(b), nil
}

// newReportWriter returns the writer for run reports. Without a report
// file the configured format goes to out. With one, out gets the text
// summary and the file gets the configured format.
func newReportWriter(out io.Writer, cfg *config.Config) (report.Writer, func(), error) {
	console := func(format string) (report.Writer, error) {
		if format == config.FormatText {
			return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)), nil
		}
		return report.NewWriter(format, out)
	}

	if cfg.ReportFile == "" {
		w, err := console(cfg.ReportFormat)
		return w, func() {}, err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may echo response bodies, so keep them private.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	fileWriter, err := report.NewWriter(cfg.ReportFormat, f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	summary, _ := console(config.FormatText)
	return report.NewMultiWriter(summary, fileWriter), func() { _ = f.Close() }, nil
}
