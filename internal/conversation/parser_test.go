package conversation

import (
	"testing"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

func TestCommandParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewCommandParser(log)

	tests := []struct {
		input       string
		wantType    domain.CommandType
		wantPayload string
	}{
		// Chat text
		{"what can I make with leeks?", domain.CommandSend, "what can I make with leeks?"},
		{"  add more garlic  ", domain.CommandSend, "add more garlic"},
		{"//shrug", domain.CommandSend, "/shrug"},

		// Sessions
		{"/list", domain.CommandListSessions, ""},
		{"/ls", domain.CommandListSessions, ""},
		{"/new", domain.CommandNewSession, ""},
		{"/new Taco Tuesday", domain.CommandNewSession, "Taco Tuesday"},
		{"/open 2", domain.CommandOpenSession, "2"},
		{"/OPEN abc-123", domain.CommandOpenSession, "abc-123"},
		{"/rename  Sunday roast ", domain.CommandRenameSession, "Sunday roast"},
		{"/delete 3", domain.CommandDeleteSession, "3"},
		{"/rm 3", domain.CommandDeleteSession, "3"},

		// Recipes
		{"/recipe", domain.CommandShowRecipe, ""},
		{"/save", domain.CommandSaveRecipe, ""},
		{"/recipes", domain.CommandListRecipes, ""},
		{"/recipes pasta", domain.CommandListRecipes, "pasta"},

		// Kitchen
		{"/timers", domain.CommandShowTimers, ""},
		{"/timer", domain.CommandShowTimers, ""},
		{"/ingredients", domain.CommandShowIngredients, ""},

		// Misc
		{"/features", domain.CommandFeatures, ""},
		{"/reconnect", domain.CommandReconnect, ""},
		{"/help", domain.CommandHelp, ""},
		{"/?", domain.CommandHelp, ""},
		{"/quit", domain.CommandQuit, ""},
		{"/q", domain.CommandQuit, ""},

		// Unknown
		{"", domain.CommandUnknown, ""},
		{"/open", domain.CommandUnknown, "/open"},
		{"/dance now", domain.CommandUnknown, "/dance now"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := parser.Parse(tt.input)
			if cmd.Type != tt.wantType {
				t.Fatalf("Parse(%q) type = %s, want %s", tt.input, cmd.Type, tt.wantType)
			}
			if cmd.Payload != tt.wantPayload {
				t.Fatalf("Parse(%q) payload = %q, want %q", tt.input, cmd.Payload, tt.wantPayload)
			}
		})
	}
}

func TestHelpCoversCommands(t *testing.T) {
	if len(Help()) < 14 {
		t.Fatalf("help lists %d lines", len(Help()))
	}
}
