package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg returns a tea.Cmd that emits msg after the delay. Receivers
// drop the message when the input it was scheduled for has since changed.
func DebounceMsg(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}
