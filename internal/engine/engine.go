// Package engine drives the bulk translation of a catalog: it selects
// pending entries, fans them out in batches through the shared rate
// limiter, retries classified failures, and persists the whole catalog
// after every settled entry so partial work survives interruption.
package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yagoveloso/po-translator-llm/internal/pofile"
	"github.com/yagoveloso/po-translator-llm/internal/ratelimit"
	"github.com/yagoveloso/po-translator-llm/internal/store"
	"github.com/yagoveloso/po-translator-llm/internal/translator"
	"github.com/yagoveloso/po-translator-llm/internal/validator"
)

const (
	// throttleBaseWait seeds the exponential backoff after a
	// throttling-shaped failure without a provider retry-after.
	throttleBaseWait = 5 * time.Second
	// genericBaseWait seeds the linear backoff after a generic failure.
	genericBaseWait = 2 * time.Second
)

// Config controls a translation run.
type Config struct {
	// TargetLang is the language entries are translated into.
	TargetLang string
	// OutputPath is overwritten with the full catalog after every settled
	// entry and once more at run end.
	OutputPath string
	// BatchSize groups entries for progress cadence only; concurrency is
	// bounded by the rate limiter. Default 10.
	BatchSize int
	// MaxRetries is the per-entry attempt budget, shared across error
	// classes. Default 3.
	MaxRetries int
	// OnProgress is called after each entry completes (settled or failed).
	OnProgress func(done, total int)
	// OnLog emits diagnostic messages during the run.
	OnLog func(format string, args ...any)
}

func (c *Config) effectiveBatchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return 10
}

func (c *Config) effectiveMaxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 3
}

// Summary reports what a run did. Purely observational.
type Summary struct {
	Selected     int
	Settled      int
	Failed       int
	ThrottleHits int
	CacheHits    int
	AvgDelay     time.Duration
}

// Engine orchestrates one catalog translation run.
type Engine struct {
	provider translator.Provider
	limiter  *ratelimit.Limiter
	memory   *store.Store // nil disables the translation memory
	cfg      Config

	// saveMu serializes whole-catalog writes to the output path.
	saveMu sync.Mutex

	// mu guards the run counters below.
	mu           sync.Mutex
	done         int
	settled      int
	failed       int
	throttleHits int
	cacheHits    int
	waitedTotal  time.Duration
	waitedCount  int
}

// New creates an Engine. memory may be nil to disable caching.
func New(provider translator.Provider, limiter *ratelimit.Limiter, memory *store.Store, cfg Config) *Engine {
	return &Engine{
		provider: provider,
		limiter:  limiter,
		memory:   memory,
		cfg:      cfg,
	}
}

// Run translates every pending entry of f, persisting progress to the
// output path as it goes, and returns a run summary. Per-entry failures
// are contained (copy-through fallback); only context cancellation during
// the final persist surfaces as an error.
func (e *Engine) Run(ctx context.Context, f *pofile.File) (*Summary, error) {
	pending := f.PendingEntries()
	total := len(pending)

	// Launch bound: the limiter's configured ceiling. The adaptive ceiling
	// only shrinks below this, so Acquire stays the true concurrency gate.
	workers := e.limiter.Stats().MaxConcurrent
	if workers < 1 {
		workers = 1
	}

	batchSize := e.cfg.effectiveBatchSize()
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := pending[start:end]

		var g errgroup.Group
		g.SetLimit(workers)
		for _, entry := range batch {
			g.Go(func() error {
				e.translateEntry(ctx, f, entry)
				e.noteDone(total)
				return nil
			})
		}
		// Tasks never return an error; a single entry's failure must not
		// abort its siblings.
		_ = g.Wait()

		e.logf("batch %d-%d of %d complete", start+1, end, total)
	}

	if err := e.save(f); err != nil {
		return e.summary(total), err
	}
	return e.summary(total), nil
}

// translateEntry drives one entry to settled or copy-through, consuming a
// single attempt budget shared between throttling-shaped and generic
// failures.
func (e *Engine) translateEntry(ctx context.Context, f *pofile.File, entry *pofile.Entry) {
	if e.memory != nil {
		if cached, ok, err := e.memory.GetCachedTranslation(ctx, entry.MsgID, e.cfg.TargetLang); err == nil && ok {
			e.setMsgStr(entry, cached)
			e.note(func() { e.settled++; e.cacheHits++ })
			if err := e.save(f); err != nil {
				e.logf("save failed: %v", err)
			}
			return
		}
	}

	req := translator.Request{
		Text:       entry.MsgID,
		TargetLang: e.cfg.TargetLang,
		Context:    entry.Context(),
	}

	maxRetries := e.cfg.effectiveMaxRetries()
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := e.limiter.Acquire(ctx); err != nil {
			break
		}
		text, err := e.provider.Translate(ctx, req)
		e.limiter.Release()

		if err == nil {
			if verr := validator.CheckDirectives(entry.MsgID, text); verr != nil {
				e.logf("line %d: %v", entry.Line, verr)
			}
			e.setMsgStr(entry, text)
			e.limiter.Succeeded()
			e.note(func() { e.settled++ })
			if err := e.save(f); err != nil {
				e.logf("save failed: %v", err)
			}
			if e.memory != nil {
				if merr := e.memory.SaveToMemory(ctx, entry.MsgID, e.cfg.TargetLang, text, e.provider.Name()); merr != nil {
					e.logf("translation memory save failed: %v", merr)
				}
			}
			return
		}

		retryAfter, throttled := translator.Classify(err)
		var wait time.Duration
		if throttled {
			e.note(func() { e.throttleHits++ })
			e.limiter.Throttled()
			if retryAfter > 0 {
				wait = retryAfter
			} else {
				wait = throttleBaseWait << attempt
			}
			e.logf("line %d: rate limited, waiting %s (attempt %d/%d)", entry.Line, wait, attempt+1, maxRetries)
		} else {
			wait = genericBaseWait * time.Duration(attempt+1)
			e.logf("line %d: %v, waiting %s (attempt %d/%d)", entry.Line, err, wait, attempt+1, maxRetries)
		}

		e.note(func() { e.waitedTotal += wait; e.waitedCount++ })

		if attempt+1 < maxRetries {
			if !sleep(ctx, wait) {
				break
			}
		}
	}

	// Budget exhausted: copy-through so the catalog never ships an empty
	// translation.
	e.setMsgStr(entry, entry.MsgID)
	e.note(func() { e.failed++ })
	if err := e.save(f); err != nil {
		e.logf("save failed: %v", err)
	}
}

// setMsgStr assigns an entry's translation under saveMu. save serializes
// every entry of the catalog while holding the same lock, so the
// assignment must be ordered against concurrent serialization, not just
// against other assignments.
func (e *Engine) setMsgStr(entry *pofile.Entry, text string) {
	e.saveMu.Lock()
	entry.MsgStr = text
	e.saveMu.Unlock()
}

// save serializes the entire current catalog to the output path. Writers
// queue on saveMu; the last completed write reflects all entries settled
// at that instant.
func (e *Engine) save(f *pofile.File) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return f.WriteFile(e.cfg.OutputPath)
}

func (e *Engine) summary(total int) *Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := &Summary{
		Selected:     total,
		Settled:      e.settled,
		Failed:       e.failed,
		ThrottleHits: e.throttleHits,
		CacheHits:    e.cacheHits,
	}
	if e.waitedCount > 0 {
		s.AvgDelay = e.waitedTotal / time.Duration(e.waitedCount)
	}
	return s
}

func (e *Engine) note(fn func()) {
	e.mu.Lock()
	fn()
	e.mu.Unlock()
}

func (e *Engine) noteDone(total int) {
	e.mu.Lock()
	e.done++
	done := e.done
	e.mu.Unlock()
	if e.cfg.OnProgress != nil {
		e.cfg.OnProgress(done, total)
	}
}

func (e *Engine) logf(format string, args ...any) {
	if e.cfg.OnLog != nil {
		e.cfg.OnLog(format, args...)
	}
}

// sleep waits for d or until ctx is done; it reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
