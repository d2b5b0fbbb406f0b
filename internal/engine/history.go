package engine

import (
	"github.com/hammamikhairi/ottoclient/internal/content"
	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// HistoryActions returns the actions that initialize state from a persisted
// session: its messages and name, plus its recipe and ingredients when the
// session has them. Reducers ignore the parts they do not model.
func HistoryActions(d *domain.SessionDetail, newID func() string, log *logger.Logger) []state.Action {
	msgs := make([]domain.ChatMessage, 0, len(d.Messages))
	for _, pm := range d.Messages {
		c, err := content.Decode(pm.Content)
		if err != nil {
			// Kept as raw text rather than dropped.
			log.Debug("history message %s: %v", pm.ID, err)
			c = domain.Text{Content: string(pm.Content)}
		}
		id := pm.ID
		if id == "" {
			id = newID()
		}
		msgs = append(msgs, domain.ChatMessage{
			ID:        id,
			Role:      pm.Role,
			Content:   c,
			Timestamp: pm.Timestamp,
		})
	}

	actions := []state.Action{state.LoadHistory{Messages: msgs, SessionName: d.Name}}
	if d.Recipe != nil {
		actions = append(actions, state.LoadRecipe{Recipe: d.Recipe})
	}
	if len(d.Ingredients) > 0 {
		actions = append(actions, state.SetIngredients{Items: d.Ingredients})
	}
	return actions
}
