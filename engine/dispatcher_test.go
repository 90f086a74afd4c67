package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeEngine struct {
	name  string
	html  string
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Fetch(_ context.Context, req *FetchRequest) (*FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &FetchResult{HTML: f.html, FinalURL: req.URL, EngineName: f.name}, nil
}

func hasHandler(r *FetchResult) bool { return strings.Contains(r.HTML, "fjs_Link_download") }

func TestDispatch_FirstSuccessWins(t *testing.T) {
	httpEng := &fakeEngine{name: "http", html: "<a onclick=\"fjs_Link_download('/a.pdf')\">"}
	rodEng := &fakeEngine{name: "rod", html: "<html></html>"}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()

	d := NewDispatcher([]Engine{httpEng, rodEng}, mem, hasHandler)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://sian.an.gov.br/busca"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineName != "http" {
		t.Errorf("expected http to win, got %s", res.EngineName)
	}
	if rodEng.calls != 0 {
		t.Errorf("rod should not run, ran %d times", rodEng.calls)
	}
	if got := mem.Get("sian.an.gov.br"); got != "http" {
		t.Errorf("expected memory to hold http, got %q", got)
	}
}

func TestDispatch_EscalatesOnRejectedResult(t *testing.T) {
	httpEng := &fakeEngine{name: "http", html: "<html><body>loading...</body></html>"}
	rodEng := &fakeEngine{name: "rod", html: "<a onclick=\"fjs_Link_download('/a.pdf')\">"}

	d := NewDispatcher([]Engine{httpEng, rodEng}, nil, hasHandler)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://sian.an.gov.br/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineName != "rod" {
		t.Errorf("expected rod to win, got %s", res.EngineName)
	}
}

func TestDispatch_AllRejectedReturnsLastFetched(t *testing.T) {
	httpEng := &fakeEngine{name: "http", html: "<p>one</p>"}
	rodEng := &fakeEngine{name: "rod", html: "<p>two</p>"}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()

	d := NewDispatcher([]Engine{httpEng, rodEng}, mem, hasHandler)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://sian.an.gov.br/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HTML != "<p>two</p>" {
		t.Errorf("expected last fetched page, got %q", res.HTML)
	}
	if mem.Len() != 0 {
		t.Error("rejected results must not be remembered")
	}
}

func TestDispatch_AllFailReturnsLastError(t *testing.T) {
	errRod := errors.New("rod: boom")
	d := NewDispatcher([]Engine{
		&fakeEngine{name: "http", err: errors.New("http: boom")},
		&fakeEngine{name: "rod", err: errRod},
	}, nil, nil)

	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://example.com/"})
	if !errors.Is(err, errRod) {
		t.Errorf("expected last error, got %v", err)
	}
}

func TestDispatch_MemoryOrdersRememberedFirst(t *testing.T) {
	httpEng := &fakeEngine{name: "http", html: "ok"}
	rodEng := &fakeEngine{name: "rod", html: "ok"}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()
	mem.Set("sian.an.gov.br", "rod")

	d := NewDispatcher([]Engine{httpEng, rodEng}, mem, nil)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://sian.an.gov.br/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineName != "rod" || httpEng.calls != 0 {
		t.Errorf("expected remembered rod first, got %s (http calls %d)", res.EngineName, httpEng.calls)
	}
}

func TestDispatch_FailedRememberedEngineIsForgotten(t *testing.T) {
	httpEng := &fakeEngine{name: "http", html: "ok"}
	rodEng := &fakeEngine{name: "rod", err: errors.New("crash")}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()
	mem.Set("sian.an.gov.br", "rod")

	d := NewDispatcher([]Engine{httpEng, rodEng}, mem, nil)
	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://sian.an.gov.br/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.EngineName != "http" {
		t.Errorf("expected http fallback, got %s", res.EngineName)
	}
	if got := mem.Get("sian.an.gov.br"); got != "http" {
		t.Errorf("expected memory to switch to http, got %q", got)
	}
}

func TestDispatch_NoEngines(t *testing.T) {
	d := NewDispatcher(nil, nil, nil)
	if _, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://x"}); !errors.Is(err, ErrNoEngines) {
		t.Errorf("expected ErrNoEngines, got %v", err)
	}
}

func TestDispatch_CanceledContext(t *testing.T) {
	eng := &fakeEngine{name: "http", html: "ok"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDispatcher([]Engine{eng}, nil, nil)
	if _, err := d.Dispatch(ctx, &FetchRequest{URL: "https://x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if eng.calls != 0 {
		t.Error("engine should not run after cancellation")
	}
}

func TestRodEngine_ForceStealth(t *testing.T) {
	var sawStealth bool
	eng := NewRodEngine(func(_ context.Context, req *FetchRequest) (*FetchResult, error) {
		sawStealth = req.Stealth
		return &FetchResult{HTML: "ok"}, nil
	}, true)

	req := &FetchRequest{URL: "https://x"}
	res, err := eng.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawStealth || req.Stealth {
		t.Errorf("stealth should be forced on a copy: saw=%v caller=%v", sawStealth, req.Stealth)
	}
	if res.EngineName != "rod-stealth" {
		t.Errorf("expected rod-stealth, got %s", res.EngineName)
	}
}

func TestRodEngine_Unconfigured(t *testing.T) {
	if _, err := NewRodEngine(nil, false).Fetch(context.Background(), &FetchRequest{}); err == nil {
		t.Error("expected error for nil fetchFunc")
	}
}

func TestDomainMemory_Expiry(t *testing.T) {
	mem := NewDomainMemory(time.Minute)
	defer mem.Stop()
	now := time.Now()
	mem.now = func() time.Time { return now }

	mem.Set("a.example", "rod")
	if got := mem.Get("a.example"); got != "rod" {
		t.Fatalf("expected rod, got %q", got)
	}

	now = now.Add(2 * time.Minute)
	if got := mem.Get("a.example"); got != "" {
		t.Errorf("expected expired entry, got %q", got)
	}
	mem.prune()
	if mem.Len() != 0 {
		t.Errorf("expected prune to drop expired entry, len %d", mem.Len())
	}
}
