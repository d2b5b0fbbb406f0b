// Package conversation parses terminal input into commands and delivers
// notifications to the user.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// CommandParser maps terminal lines to commands. Lines starting with "/"
// are commands; anything else is chat text for the assistant. A leading
// "//" sends the rest of the line as text.
type CommandParser struct {
	log   *logger.Logger
	rules []commandRule
}

type commandRule struct {
	regex *regexp.Regexp
	cmd   domain.CommandType
}

// NewCommandParser creates the slash-command parser.
func NewCommandParser(log *logger.Logger) *CommandParser {
	p := &CommandParser{log: log.With("parser")}
	p.rules = []commandRule{
		{regexp.MustCompile(`(?i)^/(list|ls|sessions)$`), domain.CommandListSessions},
		{regexp.MustCompile(`(?i)^/new(?:\s+(.+))?$`), domain.CommandNewSession},
		{regexp.MustCompile(`(?i)^/open\s+(\S+)$`), domain.CommandOpenSession},
		{regexp.MustCompile(`(?i)^/rename\s+(.+)$`), domain.CommandRenameSession},
		{regexp.MustCompile(`(?i)^/(?:delete|rm)\s+(\S+)$`), domain.CommandDeleteSession},
		{regexp.MustCompile(`(?i)^/save$`), domain.CommandSaveRecipe},
		{regexp.MustCompile(`(?i)^/recipe$`), domain.CommandShowRecipe},
		{regexp.MustCompile(`(?i)^/recipes(?:\s+(.+))?$`), domain.CommandListRecipes},
		{regexp.MustCompile(`(?i)^/timers?$`), domain.CommandShowTimers},
		{regexp.MustCompile(`(?i)^/(?:ingredients|pantry)$`), domain.CommandShowIngredients},
		{regexp.MustCompile(`(?i)^/features$`), domain.CommandFeatures},
		{regexp.MustCompile(`(?i)^/reconnect$`), domain.CommandReconnect},
		{regexp.MustCompile(`(?i)^/(help|h|\?)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^/(quit|exit|q)$`), domain.CommandQuit},
	}
	return p
}

// Parse converts one input line into a command.
func (p *CommandParser) Parse(input string) domain.Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Command{Type: domain.CommandUnknown}
	}

	if strings.HasPrefix(trimmed, "//") {
		return domain.Command{Type: domain.CommandSend, Payload: trimmed[1:]}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return domain.Command{Type: domain.CommandSend, Payload: trimmed}
	}

	for _, rule := range p.rules {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		cmd := domain.Command{Type: rule.cmd}
		if takesArgument(rule.cmd) && len(m) > 1 {
			cmd.Payload = strings.TrimSpace(m[1])
		}
		p.log.Debug("matched command: %s (payload=%q)", cmd.Type, cmd.Payload)
		return cmd
	}

	p.log.Debug("unknown command %q", trimmed)
	return domain.Command{Type: domain.CommandUnknown, Payload: trimmed}
}

func takesArgument(c domain.CommandType) bool {
	switch c {
	case domain.CommandNewSession, domain.CommandOpenSession, domain.CommandRenameSession,
		domain.CommandDeleteSession, domain.CommandListRecipes:
		return true
	}
	return false
}

// Help lists the commands understood by Parse.
func Help() []string {
	return []string{
		"/list               list sessions of the current surface",
		"/new [name]         create a session and open it",
		"/open <n|id>        open a session by list number or id",
		"/rename <name>      rename the open session",
		"/delete <n|id>      delete a session",
		"/recipe             show the recipe being built",
		"/save               save the recipe to your library",
		"/recipes [query]    list or search saved recipes",
		"/timers             show kitchen timers",
		"/ingredients        show the kitchen ingredient list",
		"/features           show backend feature flags",
		"/reconnect          reconnect the chat socket",
		"/help               show this help",
		"/quit               exit",
		"anything else is sent to the assistant (start with // to send a leading /)",
	}
}
