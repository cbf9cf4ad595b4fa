package console

import (
	"strings"
	"testing"

	"github.com/syntax-syndicate/chatshell/internal/schema"
)

const personSchema = `{
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"age": {"type": "integer", "minimum": 0, "maximum": 150},
		"role": {"enum": ["admin", "user", "guest"], "default": "user"}
	},
	"required": ["name", "age"]
}`

func parseModel(t *testing.T, raw string) *schema.Model {
	t.Helper()
	m, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

// runForm feeds the scripted lines to a renderer and returns the outcome
// plus everything it printed.
func runForm(t *testing.T, m *schema.Model, seed map[string]any, lines ...string) (map[string]any, bool, string) {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out strings.Builder
	values, ok, err := NewFormRenderer(in, &out).Run(m, seed)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return values, ok, out.String()
}

func TestFormRendererCompletes(t *testing.T) {
	m := parseModel(t, personSchema)
	values, ok, out := runForm(t, m, nil, "Ada", "36", "1")

	if !ok {
		t.Fatal("expected form to complete")
	}
	if values["name"] != "Ada" {
		t.Errorf("expected name 'Ada', got %v", values["name"])
	}
	if values["age"] != int64(36) {
		t.Errorf("expected age int64(36), got %v (%T)", values["age"], values["age"])
	}
	// "1" picked the first menu option.
	if values["role"] != "admin" {
		t.Errorf("expected role 'admin', got %v", values["role"])
	}
	if !strings.Contains(out, "1) admin") {
		t.Errorf("expected enum menu in output, got:\n%s", out)
	}
}

func TestFormRendererValidationRetry(t *testing.T) {
	m := parseModel(t, personSchema)
	values, ok, out := runForm(t, m, nil, "Ada", "two hundred", "200", "36", "")

	if !ok {
		t.Fatal("expected form to complete after retries")
	}
	if values["age"] != int64(36) {
		t.Errorf("expected age 36 after retries, got %v", values["age"])
	}
	if !strings.Contains(out, "✗ age: expected an integer") {
		t.Errorf("expected coercion error in output, got:\n%s", out)
	}
	if !strings.Contains(out, "✗ age must be <= 150") {
		t.Errorf("expected range error in output, got:\n%s", out)
	}
}

func TestFormRendererBackCommand(t *testing.T) {
	m := parseModel(t, personSchema)
	// Answer name, start age, step back, fix name, then finish.
	values, ok, out := runForm(t, m, nil, "Ado", "<", "Ada", "36", "")

	if !ok {
		t.Fatal("expected form to complete")
	}
	if values["name"] != "Ada" {
		t.Errorf("expected corrected name 'Ada', got %v", values["name"])
	}
	// Back navigation shows the previously accepted value as the draft.
	if !strings.Contains(out, "> [Ado]") {
		t.Errorf("expected draft prompt for 'Ado', got:\n%s", out)
	}
}

func TestFormRendererEmptyLineAcceptsDraft(t *testing.T) {
	m := parseModel(t, personSchema)
	seed := map[string]any{"name": "Grace", "age": int64(45)}
	values, ok, out := runForm(t, m, seed, "", "", "")

	if !ok {
		t.Fatal("expected form to complete")
	}
	if values["name"] != "Grace" || values["age"] != int64(45) {
		t.Errorf("expected seeded values accepted, got %v", values)
	}
	// The role default kicked in on the empty third line.
	if values["role"] != "user" {
		t.Errorf("expected default role 'user', got %v", values["role"])
	}
	if !strings.Contains(out, "> [Grace]") {
		t.Errorf("expected seed shown as draft, got:\n%s", out)
	}
}

func TestFormRendererBackFromFirstFieldCancels(t *testing.T) {
	m := parseModel(t, personSchema)
	values, ok, out := runForm(t, m, nil, "<")

	if ok {
		t.Fatal("expected cancellation")
	}
	if values != nil {
		t.Errorf("expected nil values, got %v", values)
	}
	if !strings.Contains(out, "Form cancelled.") {
		t.Errorf("expected cancellation notice, got:\n%s", out)
	}
}

func TestFormRendererEOFCancels(t *testing.T) {
	m := parseModel(t, personSchema)
	_, ok, out := runForm(t, m, nil, "Ada")

	if ok {
		t.Fatal("expected EOF to cancel the form")
	}
	if !strings.Contains(out, "Form cancelled.") {
		t.Errorf("expected cancellation notice, got:\n%s", out)
	}
}

func TestFormRendererOneOfMenu(t *testing.T) {
	m := parseModel(t, `{
		"properties": {
			"plan": {"oneOf": [
				{"const": "free", "title": "Free tier"},
				{"const": "pro", "title": "Pro"}
			]}
		}
	}`)
	values, ok, out := runForm(t, m, nil, "2")

	if !ok {
		t.Fatal("expected form to complete")
	}
	if values["plan"] != "pro" {
		t.Errorf("expected const 'pro' from menu choice, got %v", values["plan"])
	}
	if !strings.Contains(out, "1) Free tier") {
		t.Errorf("expected titles in menu, got:\n%s", out)
	}
}

func TestFormRendererArrayDelimiterHint(t *testing.T) {
	m := parseModel(t, `{
		"properties": {
			"tags": {"type": "array", "items": {"type": "string"}}
		}
	}`)
	in := strings.NewReader("a; b\n")
	var out strings.Builder
	values, ok, err := NewFormRenderer(in, &out, WithDelimiter(";")).Run(m, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !ok {
		t.Fatal("expected form to complete")
	}
	tags := values["tags"].([]any)
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("unexpected tags: %v", tags)
	}
	if !strings.Contains(out.String(), `separate items with ";"`) {
		t.Errorf("expected delimiter hint, got:\n%s", out.String())
	}
}
