package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/extractor"
	"github.com/use-agent/sianpdf/models"
	"github.com/ysmood/gson"
)

const page = `<html><body><ul>
<li><span class="titulo_conteudo"><a onclick="mudapagina_link(1)">Decreto 123</a></span>
<a class="help_pesquisa" onclick="fjs_Link_download('/a.pdf')">x</a>
<a class="help_pesquisa" onclick="fjs_Link_download('/b.pdf')">x</a>
<a class="help_pesquisa" onclick="fjs_Link_download('/a.pdf')">x</a></li>
</ul></body></html>`

func newButton(t *testing.T, opts ...Option) (*Button, string) {
	t.Helper()
	dir := t.TempDir()
	return New(extractor.Default(), exporter.New(dir), opts...), dir
}

func TestPress_PathsMode(t *testing.T) {
	b, dir := newButton(t)

	n, err := b.Press(context.Background(), page, "https://sian.an.gov.br/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Message != "Saved 3 PDF path(s) to pdf_paths.txt" {
		t.Errorf("unexpected notice %q", n.Message)
	}
	if n.Count != 3 || n.Path != filepath.Join(dir, "pdf_paths.txt") {
		t.Errorf("unexpected notice %+v", n)
	}
	got, err := os.ReadFile(n.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "/a.pdf\n/b.pdf\n/a.pdf" {
		t.Errorf("unexpected file content %q", got)
	}
	if b.State() != StateIdle {
		t.Errorf("expected idle after press, got %s", b.State())
	}
}

func TestPress_LinksModeIsSilent(t *testing.T) {
	var hooked []Export
	b, dir := newButton(t, WithMode(models.ModeLinks), WithExportHook(func(_ context.Context, e Export) {
		hooked = append(hooked, e)
	}))

	n, err := b.Press(context.Background(), page, "https://sian.an.gov.br/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Message != "" {
		t.Errorf("expected no notice, got %q", n.Message)
	}

	var items []models.PdfReference
	b2, _ := os.ReadFile(filepath.Join(dir, "pdf_links.json"))
	if err := json.Unmarshal(b2, &items); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(items) != 2 || items[1].Title != "Decreto 123 - 2" {
		t.Errorf("unexpected items %+v", items)
	}

	if len(hooked) != 1 || hooked[0].Count != 2 || hooked[0].SourceURL != "https://sian.an.gov.br/x" {
		t.Errorf("unexpected hook calls %+v", hooked)
	}
}

func TestPress_LinksModeAlwaysNotify(t *testing.T) {
	b, _ := newButton(t, WithMode(models.ModeLinks), WithAlwaysNotify(), WithFilename("hits.json"))
	n, err := b.Press(context.Background(), page, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Message != "Saved 2 PDF link(s) to hits.json" {
		t.Errorf("unexpected notice %q", n.Message)
	}
}

func TestPress_NoneFound(t *testing.T) {
	for mode, want := range map[models.Mode]string{
		models.ModePaths: "No PDF paths found on this page.",
		models.ModeLinks: "No PDF links found.",
	} {
		t.Run(string(mode), func(t *testing.T) {
			called := false
			b, dir := newButton(t, WithMode(mode), WithExportHook(func(context.Context, Export) { called = true }))

			n, err := b.Press(context.Background(), "<html><body><p>vazio</p></body></html>", "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Message != want {
				t.Errorf("expected %q, got %q", want, n.Message)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("expected no files, found %d", len(entries))
			}
			if called {
				t.Error("export hook must not run when nothing was exported")
			}
		})
	}
}

func TestPress_Busy(t *testing.T) {
	b, dir := newButton(t)
	b.state.Store(int32(StateExporting))

	_, err := b.Press(context.Background(), page, "")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("busy press must not export, found %d files", len(entries))
	}
	if b.State() != StateExporting {
		t.Error("busy press must not reset the running export's state")
	}
}

func TestPress_ExportFailure(t *testing.T) {
	b, _ := newButton(t, WithFilename(".."))
	n, err := b.Press(context.Background(), page, "")
	if err == nil {
		t.Fatal("expected export error")
	}
	if !strings.HasPrefix(n.Message, "Export failed: ") {
		t.Errorf("unexpected notice %q", n.Message)
	}
	if b.State() != StateIdle {
		t.Error("expected idle after failed press")
	}
}

func TestHandleClick(t *testing.T) {
	b, _ := newButton(t)
	raw, _ := json.Marshal(map[string]string{"html": page, "url": "https://sian.an.gov.br/"})
	req := gson.NewFrom(string(raw))
	if got := b.handleClick(context.Background(), req); got != "Saved 3 PDF path(s) to pdf_paths.txt" {
		t.Errorf("unexpected alert text %q", got)
	}
}

func TestScript(t *testing.T) {
	for _, mode := range []models.Mode{models.ModePaths, models.ModeLinks} {
		b, _ := newButton(t, WithMode(mode))
		cfg := b.config()
		code, err := script(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(code, "((cfg) =>") || !strings.HasSuffix(code, ");") {
			t.Errorf("script is not an invocation: %.40q...", code)
		}
		arg, _ := json.Marshal(cfg)
		if !strings.Contains(code, string(arg)) {
			t.Errorf("script does not carry config %s", arg)
		}
	}
}

func TestDetach_WhenDetached(t *testing.T) {
	b, _ := newButton(t)
	if err := b.Detach(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
