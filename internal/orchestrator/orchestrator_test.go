package orchestrator_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/pdftran/internal/creds"
	"github.com/valpere/pdftran/internal/orchestrator"
	"github.com/valpere/pdftran/internal/translator"
)

type mockClient struct {
	calls     atomic.Int32
	translate func(ctx context.Context, text string, cr creds.Credentials) (string, error)
}

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) Translate(ctx context.Context, text, sourceLang, targetLang string, cr creds.Credentials) (string, error) {
	m.calls.Add(1)
	return m.translate(ctx, text, cr)
}

type staticSource struct {
	refreshes atomic.Int32
}

func (s *staticSource) Snapshot() creds.Credentials {
	return creds.Credentials{APIKey: "key", AccessToken: "stale"}
}

func (s *staticSource) Refresh(ctx context.Context) (creds.Credentials, error) {
	s.refreshes.Add(1)
	return creds.Credentials{APIKey: "key", AccessToken: "fresh"}, nil
}

type saveCall struct {
	text, translated, service string
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	saves   []saveCall
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) GetCachedSegment(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[text]
	return v, ok, nil
}

func (c *fakeCache) SaveSegment(ctx context.Context, text, sourceLang, targetLang, translated, service string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[text] = translated
	c.saves = append(c.saves, saveCall{text: text, translated: translated, service: service})
	return nil
}

func fastConfig() orchestrator.Config {
	return orchestrator.Config{
		SourceLang:  "en",
		TargetLang:  "sv",
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			if text != "Hello world. This is a test." {
				t.Errorf("unexpected segment text %q", text)
			}
			return "Hej världen. Det här är ett test.", nil
		},
	}

	o := orchestrator.New(client, &staticSource{}, nil, fastConfig())
	out, err := o.Run(context.Background(), "Hello world. This is a test.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hej världen. Det här är ett test." {
		t.Errorf("unexpected output %q", out)
	}
	if client.calls.Load() != 1 {
		t.Errorf("expected 1 API call, got %d", client.calls.Load())
	}
}

func TestRun_EmptyInput(t *testing.T) {
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			return "", errors.New("must not be called")
		},
	}

	o := orchestrator.New(client, &staticSource{}, nil, fastConfig())
	out, err := o.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	if client.calls.Load() != 0 {
		t.Errorf("empty input must not reach the API, got %d calls", client.calls.Load())
	}
}

func TestRun_WhitespaceOnlyInput(t *testing.T) {
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			return "", errors.New("must not be called")
		},
	}

	o := orchestrator.New(client, &staticSource{}, nil, fastConfig())
	in := "\n\n   \t\n"
	out, err := o.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != in {
		t.Errorf("whitespace must pass through unchanged, got %q", out)
	}
	if client.calls.Load() != 0 {
		t.Errorf("whitespace segments must not reach the API, got %d calls", client.calls.Load())
	}
}

func TestRun_OrderPreservedUnderScrambledLatency(t *testing.T) {
	// Earlier segments get longer latencies so later ones finish first.
	latency := map[string]time.Duration{
		"alpha ": 40 * time.Millisecond,
		"beta ":  30 * time.Millisecond,
		"gamma ": 10 * time.Millisecond,
		"delta ": 0,
	}

	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			time.Sleep(latency[text])
			return strings.ToUpper(text), nil
		},
	}

	cfg := fastConfig()
	cfg.MaxSegmentBytes = 6
	cfg.Concurrency = 4
	o := orchestrator.New(client, &staticSource{}, nil, cfg)

	out, err := o.Run(context.Background(), "alpha beta gamma delta ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ALPHA BETA GAMMA DELTA " {
		t.Errorf("completion order leaked into assembly: %q", out)
	}
	if client.calls.Load() != 4 {
		t.Errorf("expected 4 API calls, got %d", client.calls.Load())
	}
}

func TestRun_PartialFailureDiscardsOutput(t *testing.T) {
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			if text == "gamma " {
				return "", &translator.Error{Kind: translator.KindPermanent, Status: 400, Message: "rejected"}
			}
			return strings.ToUpper(text), nil
		},
	}

	cfg := fastConfig()
	cfg.MaxSegmentBytes = 6
	o := orchestrator.New(client, &staticSource{}, nil, cfg)

	out, err := o.Run(context.Background(), "alpha beta gamma delta ")
	if err == nil {
		t.Fatal("expected error")
	}
	if out != "" {
		t.Errorf("failed run must not emit partial output, got %q", out)
	}

	var perr *orchestrator.PartialError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PartialError, got %T: %v", err, err)
	}
	if perr.Total != 4 {
		t.Errorf("expected 4 total segments, got %d", perr.Total)
	}
	if len(perr.Failures) != 1 || perr.Failures[0].Index != 2 {
		t.Errorf("expected segment 2 to be the failure, got %+v", perr.Failures)
	}
	// The failure of one segment must not cancel its siblings.
	if client.calls.Load() != 4 {
		t.Errorf("expected all 4 segments attempted, got %d calls", client.calls.Load())
	}
}

func TestRun_BestEffortKeepsSourceText(t *testing.T) {
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			if text == "gamma " {
				return "", &translator.Error{Kind: translator.KindPermanent, Status: 400, Message: "rejected"}
			}
			return strings.ToUpper(text), nil
		},
	}

	cfg := fastConfig()
	cfg.MaxSegmentBytes = 6
	cfg.BestEffort = true
	o := orchestrator.New(client, &staticSource{}, nil, cfg)

	out, err := o.Run(context.Background(), "alpha beta gamma delta ")
	var perr *orchestrator.PartialError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PartialError, got %T: %v", err, err)
	}
	if out != "ALPHA BETA gamma DELTA " {
		t.Errorf("failed slot must keep its source text, got %q", out)
	}
}

func TestRun_CancellationDiscardsOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			cancel()
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	o := orchestrator.New(client, &staticSource{}, nil, fastConfig())
	out, err := o.Run(ctx, "some text to translate")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if out != "" {
		t.Errorf("cancelled run must not emit output, got %q", out)
	}
}

func TestRun_CacheHitSkipsAPI(t *testing.T) {
	cache := newFakeCache()
	cache.entries["Hello world."] = "Hej världen."

	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			return "", errors.New("must not be called")
		},
	}

	o := orchestrator.New(client, &staticSource{}, cache, fastConfig())
	out, err := o.Run(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hej världen." {
		t.Errorf("expected cached translation, got %q", out)
	}
	if client.calls.Load() != 0 {
		t.Errorf("cache hit must not reach the API, got %d calls", client.calls.Load())
	}
}

func TestRun_TranslationsSavedToCache(t *testing.T) {
	cache := newFakeCache()
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			return "Hej världen.", nil
		},
	}

	o := orchestrator.New(client, &staticSource{}, cache, fastConfig())
	if _, err := o.Run(context.Background(), "Hello world."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cache.saves) != 1 {
		t.Fatalf("expected 1 cache save, got %d", len(cache.saves))
	}
	if cache.saves[0].translated != "Hej världen." || cache.saves[0].service != "mock" {
		t.Errorf("unexpected save %+v", cache.saves[0])
	}
}

type countingTokenSource struct {
	fetches atomic.Int32
}

func (ts *countingTokenSource) Token(ctx context.Context) (string, error) {
	ts.fetches.Add(1)
	time.Sleep(50 * time.Millisecond) // hold the refresh open so callers pile up
	return "fresh", nil
}

func TestRun_ConcurrentAuthFailuresShareOneRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := creds.Save(path, creds.Credentials{APIKey: "key", AccessToken: "stale", ProjectID: "proj"}); err != nil {
		t.Fatalf("failed to seed credentials: %v", err)
	}

	ts := &countingTokenSource{}
	store, err := creds.Open(path, ts)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	// All four segments fail auth at the same instant: the barrier holds
	// each worker until every sibling has arrived.
	var barrier sync.WaitGroup
	barrier.Add(4)
	firstRound := atomic.Int32{}

	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			if cr.AccessToken != "fresh" {
				if firstRound.Add(1) <= 4 {
					barrier.Done()
					barrier.Wait()
				}
				return "", &translator.Error{Kind: translator.KindAuth, Status: 401, Message: "expired"}
			}
			return strings.ToUpper(text), nil
		},
	}

	cfg := fastConfig()
	cfg.MaxSegmentBytes = 6
	cfg.Concurrency = 4
	o := orchestrator.New(client, store, nil, cfg)

	out, err := o.Run(context.Background(), "alpha beta gamma delta ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ALPHA BETA GAMMA DELTA " {
		t.Errorf("unexpected output %q", out)
	}
	if got := ts.fetches.Load(); got != 1 {
		t.Errorf("expected exactly 1 token fetch for 4 concurrent auth failures, got %d", got)
	}
}

func TestRun_SegmentLimitRespected(t *testing.T) {
	var maxSeen atomic.Int32
	client := &mockClient{
		translate: func(ctx context.Context, text string, cr creds.Credentials) (string, error) {
			if n := int32(len(text)); n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			return text, nil
		},
	}

	cfg := fastConfig()
	cfg.MaxSegmentBytes = 50
	o := orchestrator.New(client, &staticSource{}, nil, cfg)

	input := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	out, err := o.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != input {
		t.Error("identity translation must reproduce the input")
	}
	if maxSeen.Load() > 50 {
		t.Errorf("segment exceeded byte limit: %d bytes", maxSeen.Load())
	}
}
