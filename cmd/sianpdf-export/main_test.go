package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/sianpdf/config"
)

const page = `<ul><li>
<span class="titulo_conteudo"><a onclick="mudapagina_link('1')">Decreto 123</a></span>
<a class="help_pesquisa" onclick="fjs_Link_download('/docs/a.pdf')">PDF</a>
<a class="help_pesquisa" onclick="fjs_Link_download('/docs/a.pdf')">PDF</a>
</li></ul>`

// setFlags overrides the CLI flags for one test.
func setFlags(t *testing.T, m, input, out string, stdout bool) {
	t.Helper()
	oldMode, oldIn, oldURL, oldOut, oldName, oldStdout := *mode, *in, *pageURL, *outDir, *filename, *toStdout
	t.Cleanup(func() {
		*mode, *in, *pageURL, *outDir, *filename, *toStdout = oldMode, oldIn, oldURL, oldOut, oldName, oldStdout
	})
	*mode, *in, *pageURL, *outDir, *filename, *toStdout = m, input, "", out, "", stdout
}

func testConfig(dir string) *config.Config {
	return &config.Config{Export: config.ExportConfig{
		Dir:           dir,
		PathsFilename: "pdf_paths.txt",
		LinksFilename: "pdf_links.json",
	}}
}

func writePage(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_PathsToFile(t *testing.T) {
	dir := t.TempDir()
	setFlags(t, "paths", writePage(t, page), dir, false)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), testConfig("."), nil, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pdf_paths.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "/docs/a.pdf\n/docs/a.pdf" {
		t.Errorf("unexpected file %q", data)
	}
	if got := strings.TrimSpace(stderr.String()); got != "Saved 2 PDF path(s) to pdf_paths.txt" {
		t.Errorf("unexpected notice %q", got)
	}
}

func TestRun_LinksFromStdinToStdout(t *testing.T) {
	setFlags(t, "links", "-", "", true)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), testConfig(t.TempDir()), strings.NewReader(page), &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[\n  {\n    \"title\": \"Decreto 123\",\n    \"link\": \"/docs/a.pdf\"\n  }\n]"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRun_NoneFound(t *testing.T) {
	dir := t.TempDir()
	setFlags(t, "links", writePage(t, "<html></html>"), dir, false)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), testConfig("."), nil, &stdout, &stderr); err != nil {
		t.Fatalf("none found must not be an error: %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "No PDF links found." {
		t.Errorf("unexpected notice %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files, got %d", len(entries))
	}
}

func TestRun_InvalidArgs(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		input string
	}{
		{"no input", "links", ""},
		{"bad mode", "pdf", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.mode, tt.input, "", false)
			var stdout, stderr bytes.Buffer
			if err := run(context.Background(), testConfig(t.TempDir()), strings.NewReader(""), &stdout, &stderr); err == nil {
				t.Error("expected error")
			}
		})
	}
}
