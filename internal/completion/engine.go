package completion

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/syntax-syndicate/chatshell/internal/logger"
)

// Item is one suggestion. Ordering within a result list is significant and
// preserved through to display.
type Item struct {
	Label      string // Display text
	InsertText string // Replacement for the query span; Label when empty
	Kind       string // Provider-defined tag (command, file, entity, ...)
}

// Provider produces suggestions for a query typed after its trigger. The
// session handle is opaque to the engine and read-only from its
// perspective. Providers must not block indefinitely; errors and panics are
// swallowed by the engine and downgraded to an empty result.
type Provider interface {
	Complete(ctx context.Context, query string, session any) ([]Item, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, query string, session any) ([]Item, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, query string, session any) ([]Item, error) {
	return f(ctx, query, session)
}

// DefaultMaxItems caps the visible suggestion list.
const DefaultMaxItems = 10

type cacheKey struct {
	trigger rune
	query   string
}

// Engine sequences completion requests for one input field. Requests get
// monotonically increasing sequence numbers; a result is applied to the
// visible list only if it carries the highest sequence number issued so
// far, so the UI never regresses to a stale suggestion set even when
// responses arrive out of order.
//
// One engine instance belongs to one input field; there is no cross-field
// sharing. The mutex only guards against the provider goroutines spawned by
// Request.
type Engine struct {
	providers map[rune]Provider
	maxItems  int
	cache     *lru.Cache[cacheKey, []Item]

	mu     sync.Mutex
	seq    uint64
	items  []Item
	notify func()
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProvider registers the suggestion provider for a trigger character.
func WithProvider(trigger rune, p Provider) EngineOption {
	return func(e *Engine) { e.providers[trigger] = p }
}

// WithMaxItems caps how many suggestions are kept per result. Results are
// truncated, preserving provider order.
func WithMaxItems(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxItems = n
		}
	}
}

// WithCache adds an LRU cache over provider results keyed by (trigger,
// query), so retyping the same query does not hit the provider again.
func WithCache(size int) EngineOption {
	return func(e *Engine) {
		if c, err := lru.New[cacheKey, []Item](size); err == nil {
			e.cache = c
		}
	}
}

// WithNotify sets a callback invoked after a result is applied to the
// visible list. Used by the console surface; the TUI observes results
// through messages instead.
func WithNotify(fn func()) EngineOption {
	return func(e *Engine) { e.notify = fn }
}

// NewEngine creates an engine with the given providers.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		providers: make(map[rune]Provider),
		maxItems:  DefaultMaxItems,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Triggers returns the registered trigger characters.
func (e *Engine) Triggers() []rune {
	out := make([]rune, 0, len(e.providers))
	for t := range e.providers {
		out = append(out, t)
	}
	return out
}

// Issue allocates the next sequence number for a request. Callers that
// schedule their own asynchronous work (a Bubble Tea command, typically)
// pair Issue with Resolve and OnResult.
func (e *Engine) Issue() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	return e.seq
}

// Resolve invokes the provider for the token's trigger and returns its
// items. A missing provider, a provider error, or a provider panic all
// yield an empty list; provider failure is isolated per request and never
// surfaces to the dialog layer.
func (e *Engine) Resolve(ctx context.Context, tok Token, session any) []Item {
	p, ok := e.providers[tok.Trigger]
	if !ok {
		return nil
	}

	key := cacheKey{trigger: tok.Trigger, query: tok.Query}
	if e.cache != nil {
		if items, ok := e.cache.Get(key); ok {
			return items
		}
	}

	items := e.callProvider(ctx, p, tok, session)
	if e.cache != nil {
		e.cache.Add(key, items)
	}
	return items
}

func (e *Engine) callProvider(ctx context.Context, p Provider, tok Token, session any) (items []Item) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("completion provider for %q panicked: %v", string(tok.Trigger), r)
			items = nil
		}
	}()

	items, err := p.Complete(ctx, tok.Query, session)
	if err != nil {
		logger.Debug("completion provider for %q failed: %v", string(tok.Trigger), err)
		return nil
	}
	return items
}

// OnResult applies a provider result to the visible suggestion list, but
// only if seq is the latest sequence number issued. Superseded results are
// silently discarded and OnResult reports false.
func (e *Engine) OnResult(seq uint64, items []Item) bool {
	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()
		return false
	}
	if len(items) > e.maxItems {
		items = items[:e.maxItems]
	}
	e.items = items
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
	return true
}

// Request issues a request and resolves it on a background goroutine,
// delivering the result through OnResult. It returns the request's
// sequence number immediately.
func (e *Engine) Request(ctx context.Context, tok Token, session any) uint64 {
	seq := e.Issue()
	go func() {
		e.OnResult(seq, e.Resolve(ctx, tok, session))
	}()
	return seq
}

// Clear empties the visible list and invalidates in-flight requests, e.g.
// when no trigger is active at the cursor anymore.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++ // any in-flight result is now stale
	e.items = nil
}

// Items returns the currently visible suggestion list.
func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items
}
