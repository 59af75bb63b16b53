package policy

import (
	"strings"

	"maumcare/internal/models"
)

// Look-back sizes, in turns of either role.
const (
	contactWindow  = 3
	crisisWindow   = 4
	closingWindow  = 3
	bullyingAIWin  = 3
	bullyingUsrWin = 5
	distressWindow = 4
	highAIWindow   = 3
	recentUserWin  = 5
	recentAIWin    = 3

	greetingUserTurns = 4
	shortNegTurns     = 3
	shortReplyTurns   = 2
)

// RecentWindow gives bounded views over the conversation and the pending message.
type RecentWindow struct {
	history []models.Turn
	message string
}

// NewWindow builds a window over history and the pending user message.
func NewWindow(history []models.Turn, message string) RecentWindow {
	return RecentWindow{history: history, message: message}
}

// Message is the pending user message.
func (w RecentWindow) Message() string { return w.message }

// Len is the number of history turns, excluding the pending message.
func (w RecentWindow) Len() int { return len(w.history) }

func (w RecentWindow) tail(n int) []models.Turn {
	if n <= 0 {
		return nil
	}
	if n >= len(w.history) {
		return w.history
	}
	return w.history[len(w.history)-n:]
}

func byRole(turns []models.Turn, role models.Role) []string {
	var out []string
	for _, t := range turns {
		if t.Role == role {
			out = append(out, t.Content)
		}
	}
	return out
}

// Assistant returns assistant utterances among the last n history turns.
func (w RecentWindow) Assistant(n int) []string {
	return byRole(w.tail(n), models.RoleAssistant)
}

// Users returns user utterances among the last n history turns.
func (w RecentWindow) Users(n int) []string {
	return byRole(w.tail(n), models.RoleUser)
}

// UsersWithMessage is Users(n) followed by the pending message.
func (w RecentWindow) UsersWithMessage(n int) []string {
	return append(w.Users(n), w.message)
}

// LastUserTurns returns the last n user utterances counting the pending message as the newest.
func (w RecentWindow) LastUserTurns(n int) []string {
	if n <= 0 {
		return nil
	}
	all := append(byRole(w.history, models.RoleUser), w.message)
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

// PreviousUser returns the most recent user turn in history.
func (w RecentWindow) PreviousUser() (string, bool) {
	for i := len(w.history) - 1; i >= 0; i-- {
		if w.history[i].Role == models.RoleUser {
			return w.history[i].Content, true
		}
	}
	return "", false
}

func joinTexts(texts []string) string {
	return strings.Join(texts, " ")
}
