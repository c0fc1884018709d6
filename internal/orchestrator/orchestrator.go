// Package orchestrator drives a full document translation: split the
// raw text into segments, translate each through the retry controller
// on a bounded worker pool, and reassemble the results in segment
// order.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valpere/pdftran/internal/chunker"
	"github.com/valpere/pdftran/internal/creds"
	"github.com/valpere/pdftran/internal/retry"
	"github.com/valpere/pdftran/internal/translator"
)

type Config struct {
	SourceLang      string
	TargetLang      string
	MaxSegmentBytes int           // default chunker.DefaultMaxSegmentBytes
	Concurrency     int           // simultaneous in-flight segments (default 4)
	MaxAttempts     int           // per-segment attempt budget (default 5)
	BaseDelay       time.Duration // backoff base
	MaxDelay        time.Duration // backoff cap
	BestEffort      bool          // keep source text for failed segments instead of failing the run
}

// Cache is the optional per-segment translation memory. *store.Store
// implements it.
type Cache interface {
	GetCachedSegment(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error)
	SaveSegment(ctx context.Context, text, sourceLang, targetLang, translated, service string) error
}

// SegmentFailure names one segment that could not be translated.
type SegmentFailure struct {
	Index int
	Err   error
}

// PartialError reports a run in which some segments failed. It lists
// every failed segment so the user can tell which portion of the
// document is affected.
type PartialError struct {
	Total    int
	Failures []SegmentFailure
}

func (e *PartialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "translation incomplete: %d of %d segments failed:", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  segment %d: %v", f.Index, f.Err)
	}
	return b.String()
}

type Orchestrator struct {
	client translator.Client
	source retry.CredentialSource
	cache  Cache // nil disables translation memory
	cfg    Config
}

func New(client translator.Client, source retry.CredentialSource, cache Cache, cfg Config) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxSegmentBytes <= 0 {
		cfg.MaxSegmentBytes = chunker.DefaultMaxSegmentBytes
	}
	return &Orchestrator{
		client: client,
		source: source,
		cache:  cache,
		cfg:    cfg,
	}
}

// Run translates rawText and returns the assembled result. Empty input
// returns an empty string without touching the network. If any segment
// fails, Run returns a *PartialError; unless BestEffort is set, the
// assembled text is empty in that case so no partial document leaks
// out.
//
// Segments are dispatched in ascending index order but may complete in
// any order; results land in an indexed slot array and assembly always
// follows segment order.
func (o *Orchestrator) Run(ctx context.Context, rawText string) (string, error) {
	segments := chunker.Split(rawText, o.cfg.MaxSegmentBytes)
	if len(segments) == 0 {
		return "", nil
	}

	results := make([]string, len(segments))
	errs := make([]error, len(segments))

	ctrl := retry.New(o.source, retry.Config{
		MaxAttempts: o.cfg.MaxAttempts,
		BaseDelay:   o.cfg.BaseDelay,
		MaxDelay:    o.cfg.MaxDelay,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)

	for _, seg := range segments {
		g.Go(func() error {
			results[seg.Index], errs[seg.Index] = o.translateSegment(gctx, ctrl, seg)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		// Cancelled mid-run: discard whatever completed.
		return "", err
	}

	var failures []SegmentFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, SegmentFailure{Index: i, Err: err})
		}
	}

	if len(failures) > 0 {
		perr := &PartialError{Total: len(segments), Failures: failures}
		if !o.cfg.BestEffort {
			return "", perr
		}
		// Best-effort: failed segments keep their source text so the
		// document stays complete and index-aligned.
		for _, f := range failures {
			results[f.Index] = segments[f.Index].Text
		}
		return strings.Join(results, ""), perr
	}

	return strings.Join(results, ""), nil
}

func (o *Orchestrator) translateSegment(ctx context.Context, ctrl *retry.Controller, seg chunker.Segment) (string, error) {
	// Whitespace-only segments exist purely to keep reconstruction
	// lossless; the API has nothing to translate in them.
	if strings.TrimSpace(seg.Text) == "" {
		return seg.Text, nil
	}

	if o.cache != nil {
		if cached, found, err := o.cache.GetCachedSegment(ctx, seg.Text, o.cfg.SourceLang, o.cfg.TargetLang); err == nil && found {
			return cached, nil
		}
	}

	out, err := ctrl.Do(ctx, func(ctx context.Context, cr creds.Credentials) (string, error) {
		return o.client.Translate(ctx, seg.Text, o.cfg.SourceLang, o.cfg.TargetLang, cr)
	})
	if err != nil {
		return "", err
	}

	if o.cache != nil {
		_ = o.cache.SaveSegment(ctx, seg.Text, o.cfg.SourceLang, o.cfg.TargetLang, out, o.client.Name())
	}
	return out, nil
}
