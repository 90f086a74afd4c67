package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/use-agent/sianpdf/models"
)

func callTool(t *testing.T, apiURL string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = "extract_pdf_links"
	req.Params.Arguments = args

	res, err := handleExtract(apiURL, "k1", http.DefaultClient)(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return res, tc.Text
}

func fakeAPI(t *testing.T, resp models.ExtractResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/extract" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "k1" {
			t.Errorf("missing api key")
		}
		var req models.ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleExtract_Links(t *testing.T) {
	srv := fakeAPI(t, models.ExtractResponse{
		Success:   true,
		Mode:      models.ModeLinks,
		Count:     1,
		Items:     []models.PdfReference{{Title: "Decreto 123", Link: "/docs/a.pdf"}},
		SourceURL: "https://sian.an.gov.br/busca",
	})

	res, text := callTool(t, srv.URL, map[string]any{"url": "https://sian.an.gov.br/busca"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	if !strings.HasPrefix(text, "Found 1 PDF link(s) on https://sian.an.gov.br/busca:") {
		t.Errorf("unexpected summary: %q", text)
	}
	if !strings.Contains(text, `"title": "Decreto 123"`) {
		t.Errorf("expected JSON payload, got %q", text)
	}
}

func TestHandleExtract_Paths(t *testing.T) {
	srv := fakeAPI(t, models.ExtractResponse{
		Success: true,
		Mode:    models.ModePaths,
		Count:   2,
		Paths:   []string{"/a.pdf", "/a.pdf"},
	})

	_, text := callTool(t, srv.URL, map[string]any{"html": "<html></html>", "mode": "paths"})
	if !strings.HasSuffix(text, "/a.pdf\n/a.pdf") {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestHandleExtract_APIError(t *testing.T) {
	srv := fakeAPI(t, models.ExtractResponse{
		Error: &models.ErrorDetail{Code: models.ErrCodeFetch, Message: "boom"},
	})

	res, text := callTool(t, srv.URL, map[string]any{"url": "https://sian.an.gov.br/"})
	if !res.IsError || text != "[FETCH_FAILED] boom" {
		t.Errorf("unexpected result: error=%v text=%q", res.IsError, text)
	}
}

func TestHandleExtract_InvalidArgs(t *testing.T) {
	res, _ := callTool(t, "http://127.0.0.1:0", map[string]any{})
	if !res.IsError {
		t.Error("expected tool error when neither url nor html is given")
	}
}

func TestFormatResult_Empty(t *testing.T) {
	if got := formatResult(&models.ExtractResponse{Mode: models.ModeLinks}); got != "No PDF links found." {
		t.Errorf("unexpected text %q", got)
	}
}
