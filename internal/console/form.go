// Package console renders the schema wizard on a plain terminal, one field
// per prompt. It shares all interaction logic with the TUI form dialog:
// both drive the same wizard.Controller.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/syntax-syndicate/chatshell/internal/schema"
	"github.com/syntax-syndicate/chatshell/internal/wizard"
)

// BackCommand typed on its own line returns to the previous field, the
// console stand-in for the TUI's Escape key.
const BackCommand = "<"

// FormRenderer prompts for each field of a schema-driven form over an
// io.Reader / io.Writer pair.
type FormRenderer struct {
	in    *bufio.Scanner
	out   io.Writer
	delim string
}

// FormOption configures a FormRenderer.
type FormOption func(*FormRenderer)

// WithDelimiter sets the array item delimiter used for raw input.
func WithDelimiter(delim string) FormOption {
	return func(r *FormRenderer) {
		if delim != "" {
			r.delim = delim
		}
	}
}

// NewFormRenderer creates a renderer reading answers from in and writing
// prompts to out.
func NewFormRenderer(in io.Reader, out io.Writer, opts ...FormOption) *FormRenderer {
	r := &FormRenderer{
		in:    bufio.NewScanner(in),
		out:   out,
		delim: schema.DefaultArrayDelimiter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run walks the user through every field of the model and returns the
// collected values. The second return is false when the user cancelled;
// cancellation is an outcome, not an error. The error return covers I/O
// problems only.
func (r *FormRenderer) Run(m *schema.Model, seed map[string]any) (map[string]any, bool, error) {
	ctrl := wizard.New(m,
		wizard.WithSeed(seed),
		wizard.WithArrayDelimiter(r.delim),
	)

	fmt.Fprintln(r.out, "=== FORM INPUT ===")

	for ctrl.Phase() == wizard.PhaseAwaitingField {
		f := ctrl.Current()
		r.printField(f, ctrl.Draft())

		line, ok := r.readLine()
		if !ok {
			// EOF or read failure cancels the form.
			ctrl.Cancel()
			break
		}

		if strings.TrimSpace(line) == BackCommand {
			ctrl.Back()
			continue
		}

		raw := strings.TrimSpace(line)
		if raw == "" {
			// Enter accepts the displayed draft (accepted value, seed,
			// or schema default).
			raw = ctrl.Draft()
		}
		ctrl.Submit(r.translateSelection(f, raw))

		for _, msg := range ctrl.Errors() {
			fmt.Fprintf(r.out, "  ✗ %s\n", msg)
		}
	}

	if ctrl.Phase() == wizard.PhaseCancelled {
		fmt.Fprintln(r.out, "Form cancelled.")
		return nil, false, nil
	}

	values, _ := ctrl.Result()
	return values, true, nil
}

// printField writes the prompt for one field: label, requiredness marker,
// option menu for enum/oneOf, and the current draft when one exists.
func (r *FormRenderer) printField(f *schema.FieldSpec, draft string) {
	label := f.Label()
	if f.Description != "" {
		label += " — " + f.Description
	}
	if f.Required {
		label += " *"
	}
	fmt.Fprintf(r.out, "\n%s\n", label)

	switch f.Type {
	case schema.TypeEnum:
		for i, lit := range f.Enum {
			fmt.Fprintf(r.out, "  %d) %s\n", i+1, schema.FormatValue(lit, nil))
		}
	case schema.TypeOneOf:
		for i, opt := range f.OneOf {
			fmt.Fprintf(r.out, "  %d) %s\n", i+1, opt.Title)
		}
	case schema.TypeArray:
		fmt.Fprintf(r.out, "  (separate items with %q)\n", r.delim)
	}

	if draft != "" {
		fmt.Fprintf(r.out, "> [%s] ", draft)
	} else {
		fmt.Fprint(r.out, "> ")
	}
}

// translateSelection maps a numeric menu choice to the literal it stands
// for. Non-numeric input and out-of-range numbers pass through unchanged so
// validation reports them.
func (r *FormRenderer) translateSelection(f *schema.FieldSpec, raw string) string {
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}

	switch f.Type {
	case schema.TypeEnum:
		if idx >= 1 && idx <= len(f.Enum) {
			return schema.FormatValue(f.Enum[idx-1], nil)
		}
	case schema.TypeOneOf:
		if idx >= 1 && idx <= len(f.OneOf) {
			return f.OneOf[idx-1].Const
		}
	}
	return raw
}

func (r *FormRenderer) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}
