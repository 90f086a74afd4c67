package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/use-agent/sianpdf/extractor"
	"github.com/use-agent/sianpdf/models"
)

// Payload is the serialized form of one extraction result.
type Payload interface {
	// Encode writes the payload to w.
	Encode(w io.Writer) error

	// ContentType is the MIME type of the encoded payload.
	ContentType() string

	// Len is the number of entries in the payload.
	Len() int
}

// TextPayload is one path per line, UTF-8, without a trailing newline.
type TextPayload []string

func (p TextPayload) Encode(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(p, "\n"))
	return err
}

func (p TextPayload) ContentType() string { return "text/plain; charset=utf-8" }
func (p TextPayload) Len() int            { return len(p) }

// JSONPayload is a JSON array of {"title", "link"} objects indented with
// two spaces. HTML characters are written as-is.
type JSONPayload []models.PdfReference

func (p JSONPayload) Encode(w io.Writer) error {
	items := p
	if items == nil {
		items = JSONPayload{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode([]models.PdfReference(items)); err != nil {
		return fmt.Errorf("exporter: encode json: %w", err)
	}
	// Encoder terminates with a newline; the file format does not.
	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

func (p JSONPayload) ContentType() string { return "application/json" }
func (p JSONPayload) Len() int            { return len(p) }

// PayloadFor picks the payload variant matching the result's mode.
func PayloadFor(res extractor.Result) Payload {
	if res.Mode == models.ModePaths {
		return TextPayload(res.Paths)
	}
	return JSONPayload(res.Items)
}

// DefaultFilename returns the file name used for a mode's export.
func DefaultFilename(mode models.Mode) string {
	if mode == models.ModePaths {
		return "pdf_paths.txt"
	}
	return "pdf_links.json"
}
