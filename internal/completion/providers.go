package completion

import (
	"context"
	"strings"
)

// Default trigger characters and the providers behind them.
const (
	TriggerSlash = '/' // system commands
	TriggerAt    = '@' // context references (files, agents)
	TriggerColon = ':' // power-user shortcuts
	TriggerHash  = '#' // semantic entities
)

// ContextSource is implemented by session handles that expose referencable
// context items (file paths, agent ids) for the @ provider.
type ContextSource interface {
	ContextRefs() []string
}

// EntitySource is implemented by session handles that expose semantic
// entity names for the # provider.
type EntitySource interface {
	EntityNames() []string
}

// StaticProvider filters a fixed candidate list by query prefix. Suffix, if
// set, is appended to each insert text so accepting an item can keep the
// dropdown chain going (e.g. "src/" invites another segment).
type StaticProvider struct {
	Candidates []string
	Kind       string
	Suffix     string
	// Fold makes the prefix match case-insensitive.
	Fold bool
}

// Complete returns the candidates matching the query prefix, in declaration
// order.
func (p *StaticProvider) Complete(_ context.Context, query string, _ any) ([]Item, error) {
	var items []Item
	for _, c := range p.Candidates {
		if !matchPrefix(c, query, p.Fold) {
			continue
		}
		items = append(items, Item{
			Label:      c,
			InsertText: c + p.Suffix,
			Kind:       p.Kind,
		})
	}
	return items, nil
}

func matchPrefix(candidate, query string, fold bool) bool {
	if fold {
		return strings.HasPrefix(strings.ToLower(candidate), strings.ToLower(query))
	}
	return strings.HasPrefix(candidate, query)
}

// defaultCommands are the built-in / commands.
var defaultCommands = []string{"workspace", "project", "open", "help", "run", "config", "quit"}

// defaultPowerCommands are the built-in : shortcuts.
var defaultPowerCommands = []string{"ws", "proj", "open", "clear", "quit"}

// defaultEntities are the built-in # entity names.
var defaultEntities = []string{"User", "Workspace", "Project", "Agent", "Context"}

// DefaultCommands returns a copy of the built-in / command names.
func DefaultCommands() []string {
	return append([]string{}, defaultCommands...)
}

// NewSlashProvider suggests system commands for the / trigger. Accepting a
// command appends a space so the user can continue with arguments.
func NewSlashProvider(extra ...string) Provider {
	return &StaticProvider{
		Candidates: append(append([]string{}, defaultCommands...), extra...),
		Kind:       "command",
		Suffix:     " ",
	}
}

// NewPowerProvider suggests power-user shortcuts for the : trigger.
func NewPowerProvider() Provider {
	return &StaticProvider{
		Candidates: defaultPowerCommands,
		Kind:       "power",
		Suffix:     " ",
	}
}

// NewContextProvider suggests context references for the @ trigger. When
// the session handle implements ContextSource its refs are offered;
// otherwise the fallback list is used.
func NewContextProvider(fallback ...string) Provider {
	return ProviderFunc(func(_ context.Context, query string, session any) ([]Item, error) {
		candidates := fallback
		if src, ok := session.(ContextSource); ok {
			if refs := src.ContextRefs(); len(refs) > 0 {
				candidates = refs
			}
		}
		var items []Item
		for _, c := range candidates {
			if !strings.HasPrefix(c, query) {
				continue
			}
			item := Item{Label: c, InsertText: c, Kind: "context"}
			if strings.HasSuffix(c, "/") {
				// Directory refs keep the trigger open for the next segment.
				item.Kind = "dir"
			} else {
				item.InsertText = c + " "
			}
			items = append(items, item)
		}
		return items, nil
	})
}

// NewEntityProvider suggests semantic entities for the # trigger. Matching
// is case-insensitive. Entities come from the session handle when it
// implements EntitySource.
func NewEntityProvider() Provider {
	return ProviderFunc(func(_ context.Context, query string, session any) ([]Item, error) {
		candidates := defaultEntities
		if src, ok := session.(EntitySource); ok {
			if names := src.EntityNames(); len(names) > 0 {
				candidates = names
			}
		}
		var items []Item
		for _, c := range candidates {
			if !matchPrefix(c, query, true) {
				continue
			}
			items = append(items, Item{Label: c, InsertText: c + " ", Kind: "entity"})
		}
		return items, nil
	})
}

// DefaultEngine wires the four built-in providers under their standard
// triggers.
func DefaultEngine(opts ...EngineOption) *Engine {
	base := []EngineOption{
		WithProvider(TriggerSlash, NewSlashProvider()),
		WithProvider(TriggerAt, NewContextProvider("README.md", "src/", "project.json", "agent:planner", "agent:executor")),
		WithProvider(TriggerColon, NewPowerProvider()),
		WithProvider(TriggerHash, NewEntityProvider()),
	}
	return NewEngine(append(base, opts...)...)
}
