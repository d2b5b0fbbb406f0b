package content

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

func TestParseIngredientsAndPlainText(t *testing.T) {
	got := Parse(`{"type":"ingredients","items":[{"name":"salt"}]}`)
	ing, ok := got.(domain.Ingredients)
	if !ok {
		t.Fatalf("expected Ingredients, got %T", got)
	}
	if len(ing.Items) != 1 || ing.Items[0].Name != "salt" {
		t.Fatalf("unexpected items: %+v", ing.Items)
	}

	got = Parse("plain text")
	if txt, ok := got.(domain.Text); !ok || txt.Content != "plain text" {
		t.Fatalf("expected text fallback, got %#v", got)
	}
}

func TestParseFencedBlock(t *testing.T) {
	raw := "Here you go:\n```json\n{\"type\":\"timer\",\"duration\":300,\"label\":\"rest dough\"}\n```"
	got := Parse(raw)
	tm, ok := got.(domain.Timer)
	if !ok {
		t.Fatalf("expected Timer, got %T", got)
	}
	if tm.Duration != 300 || tm.Label != "rest dough" {
		t.Fatalf("unexpected timer: %+v", tm)
	}
}

func TestParseFallsBackToOriginalString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"broken json", `  {"type":"ingredients","items":[ `},
		{"item without name", `{"type":"ingredients","items":[{"amount":2}]}`},
		{"items not array", `{"type":"ingredients","items":"salt"}`},
		{"unknown type", `{"type":"poem","lines":["a"]}`},
		{"missing type", `{"content":"hi"}`},
		{"array", `[1,2,3]`},
		{"timer without label", `{"type":"timer","duration":5}`},
		{"zero timer", `{"type":"timer","duration":0,"label":"x"}`},
		{"bad update action", `{"type":"recipe_update","action":"explode"}`},
		{"recipe without steps", `{"type":"recipe","recipe_id":"","name":"Tacos","ingredients":[]}`},
		{"recipe name only", `{"type":"recipe","name":"Tacos"}`},
		{"fenced garbage", "```json\n{nope}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			txt, ok := got.(domain.Text)
			if !ok {
				t.Fatalf("expected Text, got %T", got)
			}
			if txt.Content != tt.raw {
				t.Fatalf("content = %q, want original %q", txt.Content, tt.raw)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		`{"type":"text","content":"hello"}`,
		`{"type":"ingredients","title":"Pantry","items":[{"name":"flour","amount":2,"unit":"cups"},{"name":"salt","amount":"a pinch","used":true}],"action":"update"}`,
		`{"type":"session_name","name":"Sunday roast"}`,
		`{"type":"recipe_name","name":"Tacos"}`,
		`{"type":"recipe","recipe_id":"r1","name":"Tacos","ingredients":[{"name":"tortilla"}],"steps":["warm tortillas",{"instruction":"fry","duration_minutes":5}],"servings":4,"tags":["mexican"]}`,
		`{"type":"recipe","recipe_id":"","name":"Pho","ingredients":[],"steps":[]}`,
		`{"type":"recipe_update","action":"set_metadata","name":"Tacos","difficulty":"easy"}`,
		`{"type":"timer","duration":90,"label":"eggs","started_at":"2024-05-01T10:00:00Z"}`,
		`{"type":"thinking","message":"looking at your pantry"}`,
	}
	for _, in := range inputs {
		c := Parse(in)
		if _, isText := c.(domain.Text); isText && TypeOf(json.RawMessage(in)) != "text" {
			t.Fatalf("input fell back to text: %s", in)
		}
		out, err := Encode(c)
		if err != nil {
			t.Fatalf("encode %s: %v", in, err)
		}

		var want, got any
		if err := json.Unmarshal([]byte(in), &want); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("round trip mismatch\n in: %s\nout: %s", in, out)
		}
	}
}

func TestDecodeStructured(t *testing.T) {
	c, err := Decode(json.RawMessage(`{"type":"recipe_update","action":"set_steps","steps":["a","b"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	upd, ok := c.(domain.RecipeUpdate)
	if !ok || len(upd.Steps) != 2 {
		t.Fatalf("unexpected content %#v", c)
	}

	// Legacy string content goes through the raw parser.
	c, err = Decode(json.RawMessage(`"{\"type\":\"session_name\",\"name\":\"Brunch\"}"`))
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if sn, ok := c.(domain.SessionName); !ok || sn.Name != "Brunch" {
		t.Fatalf("unexpected legacy content %#v", c)
	}

	_, err = Decode(json.RawMessage(`{"type":"poem"}`))
	if !errors.Is(err, domain.ErrUnknownContent) {
		t.Fatalf("expected ErrUnknownContent, got %v", err)
	}

	_, err = Decode(json.RawMessage(`{"type":"ingredients","items":[{}]}`))
	if !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}

	_, err = Decode(json.RawMessage(`{"type":"recipe","name":"Tacos"}`))
	if !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent for partial recipe, got %v", err)
	}

	_, err = Decode(nil)
	if !errors.Is(err, domain.ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent for empty content, got %v", err)
	}
}

func TestSystemStatusDecodes(t *testing.T) {
	c, err := Decode(json.RawMessage(`{"type":"error","message":"model overloaded"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sys, ok := c.(domain.System)
	if !ok || sys.Status != domain.SystemError || sys.Message != "model overloaded" {
		t.Fatalf("unexpected system content %#v", c)
	}
}
