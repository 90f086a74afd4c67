// Command sianpdf-export extracts PDF references from one SIAN result page
// and writes pdf_paths.txt or pdf_links.json.
//
// Usage:
//
//	sianpdf-export -in page.html -mode links
//	curl -s https://sian.an.gov.br/... | sianpdf-export -in - -mode paths -stdout
//	sianpdf-export -url https://sian.an.gov.br/... -browser
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/sianpdf/browser"
	"github.com/use-agent/sianpdf/config"
	"github.com/use-agent/sianpdf/engine"
	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/extractor"
	"github.com/use-agent/sianpdf/models"
	"github.com/use-agent/sianpdf/trigger"
	"github.com/use-agent/sianpdf/webhook"
)

// CLI flags
var (
	mode       = flag.String("mode", "links", "extraction mode: paths or links")
	in         = flag.String("in", "", "HTML file to read, or - for stdin")
	pageURL    = flag.String("url", "", "result page to fetch instead of -in")
	outDir     = flag.String("out", "", "export directory (default: $SIANPDF_EXPORT_DIR or .)")
	filename   = flag.String("filename", "", "export filename (default: pdf_paths.txt or pdf_links.json)")
	toStdout   = flag.Bool("stdout", false, "write the export to stdout instead of a file")
	useBrowser = flag.Bool("browser", false, "allow a headless browser when fetching -url")
	useStealth = flag.Bool("stealth", false, "inject stealth scripts when the browser is used")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	config.InitLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "sianpdf-export:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	m, err := models.ParseMode(*mode)
	if err != nil {
		return err
	}
	if (*in == "") == (*pageURL == "") {
		return errors.New("exactly one of -in or -url is required")
	}

	ext, err := extractor.FromConfig(cfg.Selectors)
	if err != nil {
		return err
	}

	rawHTML, sourceURL, err := readInput(ctx, cfg, ext, stdin)
	if err != nil {
		return err
	}

	if *toStdout {
		res, err := ext.ExtractString(rawHTML, m)
		if err != nil {
			return err
		}
		if res.Empty() {
			fmt.Fprintln(stderr, trigger.NoneFoundMessage(m))
			return nil
		}
		return exporter.New(".").Write(stdout, exporter.PayloadFor(res))
	}

	dir := cfg.Export.Dir
	if *outDir != "" {
		dir = *outDir
	}
	name := *filename
	if name == "" {
		name = cfg.Export.PathsFilename
		if m == models.ModeLinks {
			name = cfg.Export.LinksFilename
		}
	}

	hooks := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
	defer hooks.Wait()

	btn := trigger.New(ext, exporter.New(dir),
		trigger.WithMode(m),
		trigger.WithFilename(name),
		trigger.WithAlwaysNotify(),
		trigger.WithExportHook(func(_ context.Context, e trigger.Export) {
			hooks.DeliverAsync(webhook.NewEvent(webhook.EventExportCompleted, e))
		}),
	)

	notice, err := btn.Press(ctx, rawHTML, sourceURL)
	if err != nil {
		return err
	}
	fmt.Fprintln(stderr, notice.Message)
	return nil
}

// readInput returns the document and, for -url, its final address.
func readInput(ctx context.Context, cfg *config.Config, ext *extractor.Extractor, stdin io.Reader) (string, string, error) {
	if *in != "" {
		r := stdin
		if *in != "-" {
			f, err := os.Open(*in)
			if err != nil {
				return "", "", fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", "", fmt.Errorf("read input: %w", err)
		}
		return string(data), "", nil
	}

	var rodFetch engine.RodFetchFunc
	if *useBrowser {
		b, err := browser.Launch(cfg.Browser, cfg.Fetch)
		if err != nil {
			return "", "", err
		}
		defer b.Close()
		rodFetch = b.Fetch
	}

	engines, err := engine.Build(cfg.Fetch.EscalationOrder, rodFetch)
	if err != nil {
		return "", "", err
	}
	memory := engine.NewDomainMemory(cfg.Fetch.DomainMemoryTTL)
	defer memory.Stop()

	d := engine.NewDispatcher(engines, memory, func(r *engine.FetchResult) bool {
		return ext.Mentions(r.HTML)
	})

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Fetch.DefaultTimeout)
	defer cancel()

	page, err := d.Dispatch(fetchCtx, &engine.FetchRequest{
		URL:     *pageURL,
		Timeout: cfg.Fetch.DefaultTimeout,
		Stealth: *useStealth,
	})
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", *pageURL, err)
	}
	slog.Info("page fetched", "url", page.FinalURL, "engine", page.EngineName)
	return page.HTML, page.FinalURL, nil
}
