// Package completion locates the active trigger in a chat input line and
// sequences asynchronous suggestion requests so the visible list never
// regresses to a stale result.
package completion

import (
	"unicode"
)

// Token describes the active completion context: the trigger character that
// scopes the cursor and the query typed after it. Tokens are transient,
// recomputed on every text change, never persisted.
type Token struct {
	Trigger rune   // The trigger character
	Offset  int    // Rune offset of the trigger in the text
	Query   string // Text between the trigger and the cursor
}

// Resolver locates trigger characters around a cursor. The zero value is
// not usable; construct with NewResolver.
type Resolver struct {
	triggers map[rune]bool
	boundary bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBoundary makes a trigger valid only at the start of the line or when
// preceded by whitespace or an opening bracket. Off by default: a trigger
// glued to a word ("hello/") still opens a completion context.
func WithBoundary() ResolverOption {
	return func(r *Resolver) { r.boundary = true }
}

// boundaryRunes are accepted before a trigger when WithBoundary is set.
var boundaryRunes = map[rune]bool{'(': true, '[': true, '{': true, '<': true}

// NewResolver creates a resolver for the given trigger characters. Multiple
// triggers may be registered simultaneously; resolution always picks the
// nearest one preceding the cursor.
func NewResolver(triggers []rune, opts ...ResolverOption) *Resolver {
	r := &Resolver{triggers: make(map[rune]bool, len(triggers))}
	for _, t := range triggers {
		r.triggers[t] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve scans backward from cursor for the nearest registered trigger
// that is not separated from the cursor by whitespace. cursor is a rune
// offset; offsets past the end of text are clamped. Returns false when no
// trigger is active at the cursor.
func (r *Resolver) Resolve(text string, cursor int) (Token, bool) {
	runes := []rune(text)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	if cursor < 0 {
		cursor = 0
	}

	for i := cursor - 1; i >= 0; i-- {
		ch := runes[i]
		if unicode.IsSpace(ch) {
			// Whitespace between trigger and cursor closes the trigger.
			return Token{}, false
		}
		if !r.triggers[ch] {
			continue
		}
		if r.boundary && i > 0 {
			prev := runes[i-1]
			if !unicode.IsSpace(prev) && !boundaryRunes[prev] {
				continue
			}
		}
		return Token{
			Trigger: ch,
			Offset:  i,
			Query:   string(runes[i+1 : cursor]),
		}, true
	}
	return Token{}, false
}

// ResolveToken is a convenience wrapper for one-shot resolution without a
// configured Resolver.
func ResolveToken(text string, cursor int, triggers []rune) (Token, bool) {
	return NewResolver(triggers).Resolve(text, cursor)
}

// Apply replaces the active token span (trigger through cursor) with the
// item's insert text, keeping the trigger character and everything outside
// the span untouched. It returns the new text and the new cursor position
// (a rune offset immediately after the inserted text, not the end of the
// input).
func Apply(text string, cursor int, tok Token, item Item) (string, int) {
	runes := []rune(text)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	if tok.Offset < 0 || tok.Offset >= len(runes) {
		return text, cursor
	}

	insert := item.InsertText
	if insert == "" {
		insert = item.Label
	}
	insertRunes := []rune(insert)

	out := make([]rune, 0, len(runes)+len(insertRunes))
	out = append(out, runes[:tok.Offset+1]...) // text up to and including the trigger
	out = append(out, insertRunes...)
	out = append(out, runes[cursor:]...)

	return string(out), tok.Offset + 1 + len(insertRunes)
}
