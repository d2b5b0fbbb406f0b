package display

import (
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

func amount(s string) *domain.Amount {
	a := domain.Amount(s)
	return &a
}

func TestFormatContent(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Content
		want []string
	}{
		{"text", domain.Text{Content: "hello"}, []string{"hello"}},
		{"system", domain.System{Status: domain.SystemError, Message: "boom"}, []string{"[error] boom"}},
		{"timer", domain.Timer{Duration: 90, Label: "eggs"}, []string{`"eggs"`, "1:30"}},
		{"ingredients", domain.Ingredients{Title: "Pantry", Items: []domain.Ingredient{{Name: "rice", Amount: amount("2"), Unit: "cups"}}}, []string{"Pantry", "2 cups rice"}},
		{"recipe", domain.RecipeContent{Name: "Soup", Steps: []domain.RecipeStep{{Instruction: "Boil"}}}, []string{"Soup (unsaved)", "1. Boil"}},
		{"update", domain.RecipeUpdate{Action: domain.RecipeSetSteps}, []string{"set_steps"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatContent(tt.c)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("FormatContent() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestFormatMessageRoles(t *testing.T) {
	if got := FormatMessage(domain.ChatMessage{Role: domain.RoleUser, Content: domain.Text{Content: "hi"}}); got != "you: hi" {
		t.Fatalf("user message = %q", got)
	}
	if got := FormatMessage(domain.ChatMessage{Role: domain.RoleAssistant, Content: domain.Text{Content: "yo"}}); got != "otto: yo" {
		t.Fatalf("assistant message = %q", got)
	}
}

func TestFormatTimers(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	timers := []domain.Timer{
		{Label: "pasta", Duration: 600, StartedAt: start},
		{Label: "toast", Duration: 60, StartedAt: start},
	}
	got := FormatTimers(timers, start.Add(2*time.Minute))
	if !strings.Contains(got, "8:00") || !strings.Contains(got, "done") {
		t.Fatalf("FormatTimers() = %q", got)
	}
	if FormatTimers(nil, start) != "No timers." {
		t.Fatal("empty timer list")
	}
}

func TestFormatRecipeMeta(t *testing.T) {
	serves, mins := 4, 25
	r := &domain.Recipe{
		ID:               "r1",
		Name:             "Curry",
		Servings:         &serves,
		TotalTimeMinutes: &mins,
		Difficulty:       "easy",
		Tags:             []string{"thai"},
	}
	got := FormatRecipe(r)
	for _, w := range []string{"serves 4", "25 min", "easy", "thai"} {
		if !strings.Contains(got, w) {
			t.Fatalf("FormatRecipe() = %q, missing %q", got, w)
		}
	}
	if strings.Contains(got, "unsaved") {
		t.Fatalf("saved recipe marked unsaved: %q", got)
	}
}

func TestSnapshotTimersKeepsOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	bar := snapshotTimers([]domain.Timer{
		{Label: "z", Duration: 30, StartedAt: start},
		{Label: "a", Duration: 300, StartedAt: start},
	}, start.Add(time.Minute))

	if len(bar) != 2 || bar[0].label != "z" || !bar[0].fired || bar[1].fired {
		t.Fatalf("bar = %+v", bar)
	}
	if got := titleStr(bar); got != "Otto | z: DONE! | a: 4:00" {
		t.Fatalf("title = %q", got)
	}
}
