package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/models"
	"github.com/use-agent/sianpdf/trigger"
)

func main() {
	apiURL := os.Getenv("SIANPDF_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SIANPDF_API_KEY")

	s := server.NewMCPServer(
		"sianpdf",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_pdf_links",
		mcp.WithDescription("Find the PDF documents listed on a SIAN (sian.an.gov.br) search result page. Pass either the page URL or its HTML. Returns the download paths, or title/link pairs as JSON."),
		mcp.WithString("url",
			mcp.Description("Result page to fetch. Mutually exclusive with html."),
		),
		mcp.WithString("html",
			mcp.Description("Result page HTML, e.g. saved from the browser. Mutually exclusive with url."),
		),
		mcp.WithString("mode",
			mcp.Description("'links' (default): titled and deduplicated, as JSON. 'paths': every download path in page order, one per line."),
			mcp.Enum("links", "paths"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Use the stealth browser when fetching url"),
		),
	)
	s.AddTool(extractTool, handleExtract(apiURL, apiKey, &http.Client{Timeout: 150 * time.Second}))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the sianpdf API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(apiURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleExtract(apiURL, apiKey string, client *http.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqBody := models.ExtractRequest{
			URL:     request.GetString("url", ""),
			HTML:    request.GetString("html", ""),
			Mode:    request.GetString("mode", string(models.ModeLinks)),
			Stealth: request.GetBool("stealth", false),
		}
		if err := reqBody.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var resp models.ExtractResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			errMsg := "extraction failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatResult(&resp)), nil
	}
}

// formatResult renders the response as the export file would look, under
// a one-line summary.
func formatResult(resp *models.ExtractResponse) string {
	if resp.Count == 0 {
		return trigger.NoneFoundMessage(resp.Mode)
	}

	var payload exporter.Payload = exporter.JSONPayload(resp.Items)
	noun := "PDF link(s)"
	if resp.Mode == models.ModePaths {
		payload = exporter.TextPayload(resp.Paths)
		noun = "PDF path(s)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d %s", resp.Count, noun)
	if resp.SourceURL != "" {
		fmt.Fprintf(&sb, " on %s", resp.SourceURL)
	}
	sb.WriteString(":\n\n")
	if err := payload.Encode(&sb); err != nil {
		return fmt.Sprintf("failed to render result: %v", err)
	}
	return sb.String()
}
