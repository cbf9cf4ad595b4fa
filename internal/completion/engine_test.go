package completion

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func staticProvider(items ...Item) Provider {
	return ProviderFunc(func(context.Context, string, any) ([]Item, error) {
		return items, nil
	})
}

func TestEngineStaleResultsDropped(t *testing.T) {
	e := NewEngine()

	first := e.Issue()
	second := e.Issue()

	// The older request finishes after the newer one: its result must not
	// replace what the newer request produced.
	if !e.OnResult(second, []Item{{Label: "fresh"}}) {
		t.Fatal("expected latest result to be applied")
	}
	if e.OnResult(first, []Item{{Label: "stale"}}) {
		t.Fatal("expected superseded result to be dropped")
	}

	items := e.Items()
	if len(items) != 1 || items[0].Label != "fresh" {
		t.Errorf("expected fresh items, got %v", items)
	}
}

func TestEngineOutOfOrderDelivery(t *testing.T) {
	e := NewEngine()

	first := e.Issue()
	second := e.Issue()
	third := e.Issue()

	// Three requests resolve as 3, 1, 2: only the newest may land, and the
	// middle one must not clobber it after the fact.
	if !e.OnResult(third, []Item{{Label: "third"}}) {
		t.Fatal("expected the newest result to be applied")
	}
	if e.OnResult(first, []Item{{Label: "first"}}) {
		t.Fatal("expected the oldest result to be dropped")
	}
	if e.OnResult(second, []Item{{Label: "second"}}) {
		t.Fatal("expected the middle result to be dropped")
	}

	items := e.Items()
	if len(items) != 1 || items[0].Label != "third" {
		t.Errorf("expected only the newest items to survive, got %v", items)
	}
}

func TestEngineTruncatesToMaxItems(t *testing.T) {
	e := NewEngine(WithMaxItems(3))

	var many []Item
	for i := 0; i < 10; i++ {
		many = append(many, Item{Label: fmt.Sprintf("item-%d", i)})
	}
	e.OnResult(e.Issue(), many)

	items := e.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// Provider order is preserved through truncation.
	if items[0].Label != "item-0" || items[2].Label != "item-2" {
		t.Errorf("unexpected truncation order: %v", items)
	}
}

func TestEngineResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("missing provider yields nothing", func(t *testing.T) {
		e := NewEngine()
		if items := e.Resolve(ctx, Token{Trigger: '/'}, nil); items != nil {
			t.Errorf("expected nil, got %v", items)
		}
	})

	t.Run("provider error downgrades to empty", func(t *testing.T) {
		e := NewEngine(WithProvider('/', ProviderFunc(
			func(context.Context, string, any) ([]Item, error) {
				return nil, errors.New("backend down")
			})))
		if items := e.Resolve(ctx, Token{Trigger: '/'}, nil); len(items) != 0 {
			t.Errorf("expected empty result, got %v", items)
		}
	})

	t.Run("provider panic is contained", func(t *testing.T) {
		e := NewEngine(WithProvider('/', ProviderFunc(
			func(context.Context, string, any) ([]Item, error) {
				panic("provider bug")
			})))
		if items := e.Resolve(ctx, Token{Trigger: '/'}, nil); len(items) != 0 {
			t.Errorf("expected empty result after panic, got %v", items)
		}
	})

	t.Run("query reaches the provider", func(t *testing.T) {
		e := NewEngine(WithProvider('@', ProviderFunc(
			func(_ context.Context, query string, _ any) ([]Item, error) {
				return []Item{{Label: "saw:" + query}}, nil
			})))
		items := e.Resolve(ctx, Token{Trigger: '@', Query: "rep"}, nil)
		if len(items) != 1 || items[0].Label != "saw:rep" {
			t.Errorf("unexpected items: %v", items)
		}
	})
}

func TestEngineCache(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	e := NewEngine(
		WithCache(8),
		WithProvider('/', ProviderFunc(
			func(_ context.Context, query string, _ any) ([]Item, error) {
				calls.Add(1)
				return []Item{{Label: query}}, nil
			})),
	)

	tok := Token{Trigger: '/', Query: "work"}
	e.Resolve(ctx, tok, nil)
	e.Resolve(ctx, tok, nil)
	if calls.Load() != 1 {
		t.Errorf("expected 1 provider call for repeated query, got %d", calls.Load())
	}

	e.Resolve(ctx, Token{Trigger: '/', Query: "other"}, nil)
	if calls.Load() != 2 {
		t.Errorf("expected distinct query to miss the cache, got %d calls", calls.Load())
	}
}

func TestEngineClearInvalidatesInFlight(t *testing.T) {
	e := NewEngine()

	seq := e.Issue()
	e.OnResult(seq, []Item{{Label: "visible"}})
	e.Clear()

	if items := e.Items(); len(items) != 0 {
		t.Errorf("expected empty list after clear, got %v", items)
	}
	// A result issued before Clear is stale afterwards.
	if e.OnResult(seq, []Item{{Label: "late"}}) {
		t.Error("expected in-flight result to be invalidated")
	}
}

func TestEngineRequestDeliversAsynchronously(t *testing.T) {
	done := make(chan struct{})
	e := NewEngine(
		WithNotify(func() { close(done) }),
		WithProvider('/', staticProvider(Item{Label: "quit", Kind: "command"})),
	)

	e.Request(context.Background(), Token{Trigger: '/', Query: "q"}, nil)
	<-done

	items := e.Items()
	if len(items) != 1 || items[0].Label != "quit" {
		t.Errorf("unexpected items: %v", items)
	}
}

func TestEngineTriggers(t *testing.T) {
	e := NewEngine(
		WithProvider('/', staticProvider()),
		WithProvider('@', staticProvider()),
	)
	triggers := e.Triggers()
	if len(triggers) != 2 {
		t.Fatalf("expected 2 triggers, got %v", triggers)
	}
	seen := map[rune]bool{}
	for _, tr := range triggers {
		seen[tr] = true
	}
	if !seen['/'] || !seen['@'] {
		t.Errorf("expected '/' and '@', got %v", triggers)
	}
}
