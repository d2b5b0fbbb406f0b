package state

import (
	"slices"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// ChatState is the state shared by every chat surface.
type ChatState struct {
	Messages    []domain.ChatMessage
	AgentStatus string // empty when no indicator is shown
	SessionName string
}

// Message returns the message with the given ID.
func (s ChatState) Message(id string) (domain.ChatMessage, bool) {
	for _, m := range s.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return domain.ChatMessage{}, false
}

// ReduceChat applies the base chat actions. Unknown actions return s unchanged.
func ReduceChat(s ChatState, a Action) ChatState {
	switch act := a.(type) {
	case AddOrUpdateMessage:
		s.Messages = upsertMessage(s.Messages, act)
		s.AgentStatus = ""
	case RemoveMessage:
		s.Messages = slices.DeleteFunc(slices.Clone(s.Messages), func(m domain.ChatMessage) bool { return m.ID == act.ID })
	case SetAgentStatus:
		s.AgentStatus = act.Text
	case ResetAgentStatus:
		s.AgentStatus = ""
	case SetSessionName:
		s.SessionName = act.Name
	case LoadHistory:
		s.Messages = dedupeHistory(act.Messages)
		s.AgentStatus = ""
		if act.SessionName != "" {
			s.SessionName = act.SessionName
		}
	case ResetChat:
		return ChatState{}
	}
	return s
}

func upsertMessage(msgs []domain.ChatMessage, act AddOrUpdateMessage) []domain.ChatMessage {
	if i := slices.IndexFunc(msgs, func(m domain.ChatMessage) bool { return m.ID == act.ID }); i >= 0 {
		out := slices.Clone(msgs)
		out[i].Content = act.Content
		return out
	}
	at := act.At
	if at.IsZero() {
		at = time.Now()
	}
	out := make([]domain.ChatMessage, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, domain.ChatMessage{
		ID:        act.ID,
		Role:      act.Role,
		Content:   act.Content,
		Timestamp: at,
	})
}

// dedupeHistory keeps the first position of each ID with its last content.
func dedupeHistory(in []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(in))
	pos := make(map[string]int, len(in))
	for _, m := range in {
		if i, ok := pos[m.ID]; ok {
			out[i].Content = m.Content
			continue
		}
		pos[m.ID] = len(out)
		out = append(out, m)
	}
	return out
}
