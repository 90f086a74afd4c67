// Command benchmark measures /api/v1/extract latency against live SIAN
// result pages and writes a JSON report.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/sianpdf/models"
)

// CLI flags
var (
	apiURL   = flag.String("api-url", "http://localhost:8080", "sianpdf API base URL")
	apiKey   = flag.String("api-key", "", "API key for authenticated requests")
	runs     = flag.Int("runs", 3, "number of runs per URL for averaging")
	mode     = flag.String("mode", "links", "extraction mode: paths or links")
	urlsFile = flag.String("urls", "", "file with one result page URL per line (default: built-in list)")
	stealth  = flag.Bool("stealth", false, "request the stealth browser engine")
	output   = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// defaultURLs is used when -urls is not given. Result pages need a search
// session, so pass real ones with -urls for meaningful counts.
var defaultURLs = []string{
	"https://sian.an.gov.br/",
}

type runResult struct {
	Run          int    `json:"run"`
	TotalMs      int64  `json:"total_ms"`
	FetchMs      int64  `json:"fetch_ms"`
	ExtractionMs int64  `json:"extraction_ms"`
	Count        int    `json:"count"`
	EngineUsed   string `json:"engine_used,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs      float64 `json:"total_ms"`
	FetchMs      float64 `json:"fetch_ms"`
	ExtractionMs float64 `json:"extraction_ms"`
	Count        float64 `json:"count"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	Mode       string      `json:"mode"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	urls, err := loadURLs(*urlsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== sianpdf benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Mode:      %s\n", *mode)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		Mode:       *mode,
		RunsPerURL: *runs,
	}

	client := &http.Client{Timeout: 150 * time.Second}
	for _, u := range urls {
		fmt.Printf("Benchmarking %s ...\n", u)
		ur := urlResult{URL: u}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(client, u, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d found via %s\n", rr.TotalMs, rr.Count, rr.EngineUsed)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func loadURLs(path string) ([]string, error) {
	if path == "" {
		return defaultURLs, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs in %s", path)
	}
	return urls, nil
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(client *http.Client, url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ExtractRequest{
		URL:     url,
		Mode:    *mode,
		Timeout: 120,
		Stealth: *stealth,
	})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er models.ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = er.Success
	rr.TotalMs = er.Timing.TotalMs
	rr.FetchMs = er.Timing.FetchMs
	rr.ExtractionMs = er.Timing.ExtractionMs
	rr.Count = er.Count
	rr.EngineUsed = er.EngineUsed
	if er.Error != nil {
		rr.Error = er.Error.Code + ": " + er.Error.Message
	}
	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.FetchMs += float64(r.FetchMs)
		avg.ExtractionMs += float64(r.ExtractionMs)
		avg.Count += float64(r.Count)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.FetchMs /= n
	avg.ExtractionMs /= n
	avg.Count /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tFetch\tExtract\tFound\tEngine\n")
	fmt.Fprintf(w, "───\t───────────\t─────\t───────\t─────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%.0f\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			int64(r.Averages.FetchMs),
			int64(r.Averages.ExtractionMs),
			r.Averages.Count,
			dominantEngine(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

// dominantEngine returns the engine that served most successful runs.
func dominantEngine(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.EngineUsed]++
		}
	}
	best, bestCount := "-", 0
	for name, count := range counts {
		if count > bestCount {
			best = name
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
