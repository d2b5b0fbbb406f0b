package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/timer"
)

// FormatMessage renders one chat message as plain text.
func FormatMessage(m domain.ChatMessage) string {
	who := "otto"
	if m.Role == domain.RoleUser {
		who = "you"
	}
	return who + ": " + FormatContent(m.Content)
}

// FormatContent renders a payload as plain text.
func FormatContent(c domain.Content) string {
	switch v := c.(type) {
	case domain.Text:
		return v.Content
	case domain.System:
		return fmt.Sprintf("[%s] %s", v.Status, v.Message)
	case domain.SessionName:
		return "session renamed to " + v.Name
	case domain.RecipeName:
		return "recipe: " + v.Name
	case domain.Ingredients:
		return FormatIngredients(v.Title, v.Items)
	case domain.Timer:
		return fmt.Sprintf("timer %q for %s", v.Label, timer.Format(v.Length()))
	case domain.RecipeContent:
		return FormatRecipe(v.ToRecipe())
	case domain.RecipeUpdate:
		return "recipe update: " + string(v.Action)
	case nil:
		return ""
	default:
		return string(c.Type())
	}
}

// FormatIngredients renders an ingredient list, one item per line.
func FormatIngredients(title string, items []domain.Ingredient) string {
	var b strings.Builder
	if title == "" {
		title = "Ingredients"
	}
	b.WriteString(title)
	if len(items) == 0 {
		b.WriteString("\n  (none)")
	}
	for _, ing := range items {
		b.WriteString("\n  ")
		if ing.Used != nil && *ing.Used {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
		if ing.Amount != nil {
			b.WriteString(string(*ing.Amount))
			b.WriteByte(' ')
		}
		if ing.Unit != "" {
			b.WriteString(ing.Unit)
			b.WriteByte(' ')
		}
		b.WriteString(ing.Name)
		if ing.Highlighted != nil && *ing.Highlighted {
			b.WriteString(" *")
		}
	}
	return b.String()
}

// FormatRecipe renders a recipe document.
func FormatRecipe(r *domain.Recipe) string {
	if r == nil {
		return "(no recipe yet)"
	}
	var b strings.Builder
	b.WriteString(r.Name)
	if !r.Saved() {
		b.WriteString(" (unsaved)")
	}
	if r.Description != "" {
		b.WriteString("\n  " + r.Description)
	}

	var meta []string
	if r.Servings != nil {
		meta = append(meta, fmt.Sprintf("serves %d", *r.Servings))
	}
	if r.TotalTimeMinutes != nil {
		meta = append(meta, fmt.Sprintf("%d min", *r.TotalTimeMinutes))
	}
	if r.Difficulty != "" {
		meta = append(meta, r.Difficulty)
	}
	if len(r.Tags) > 0 {
		meta = append(meta, strings.Join(r.Tags, ", "))
	}
	if len(meta) > 0 {
		b.WriteString("\n  " + strings.Join(meta, " · "))
	}

	if len(r.Ingredients) > 0 {
		b.WriteString("\n" + FormatIngredients("Ingredients", r.Ingredients))
	}
	if len(r.Steps) > 0 {
		b.WriteString("\nSteps")
		for i, s := range r.Steps {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, s.Instruction)
			if s.DurationMinutes != nil {
				fmt.Fprintf(&b, " (%d min)", *s.DurationMinutes)
			}
		}
	}
	return b.String()
}

// FormatTimers renders the timer list with the countdown at now.
func FormatTimers(timers []domain.Timer, now time.Time) string {
	if len(timers) == 0 {
		return "No timers."
	}
	var b strings.Builder
	for i, t := range timers {
		if i > 0 {
			b.WriteByte('\n')
		}
		status := timer.Format(timer.Remaining(t, now))
		if timer.Expired(t, now) {
			status = "done"
		}
		fmt.Fprintf(&b, "  %-20s %s", t.Label, status)
	}
	return b.String()
}

// FormatSessions renders a numbered session list.
func FormatSessions(list []domain.Session) string {
	if len(list) == 0 {
		return "No sessions."
	}
	var b strings.Builder
	for i, s := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := s.Name
		if name == "" {
			name = "(untitled)"
		}
		fmt.Fprintf(&b, "  %d. %s  %s", i+1, name, s.ID)
	}
	return b.String()
}

// FormatSummaries renders a numbered recipe summary list.
func FormatSummaries(list []domain.RecipeSummary) string {
	if len(list) == 0 {
		return "No saved recipes."
	}
	var b strings.Builder
	for i, r := range list {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  %d. %s", i+1, r.Name)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(r.Tags, ", "))
		}
	}
	return b.String()
}
