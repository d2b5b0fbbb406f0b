package domain

// CommandType classifies a line typed into the terminal client.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandSend                // free text sent to the assistant
	CommandListSessions
	CommandNewSession
	CommandOpenSession
	CommandRenameSession
	CommandDeleteSession
	CommandSaveRecipe
	CommandShowRecipe
	CommandListRecipes
	CommandShowTimers
	CommandShowIngredients
	CommandFeatures
	CommandReconnect
	CommandHelp
	CommandQuit
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandSend:
		return "send"
	case CommandListSessions:
		return "list_sessions"
	case CommandNewSession:
		return "new_session"
	case CommandOpenSession:
		return "open_session"
	case CommandRenameSession:
		return "rename_session"
	case CommandDeleteSession:
		return "delete_session"
	case CommandSaveRecipe:
		return "save_recipe"
	case CommandShowRecipe:
		return "show_recipe"
	case CommandListRecipes:
		return "list_recipes"
	case CommandShowTimers:
		return "show_timers"
	case CommandShowIngredients:
		return "show_ingredients"
	case CommandFeatures:
		return "features"
	case CommandReconnect:
		return "reconnect"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a parsed terminal line. Payload carries the argument text,
// or the whole line for CommandSend.
type Command struct {
	Type    CommandType
	Payload string
}
