package tui

import "github.com/charmbracelet/bubbles/spinner"

type syncIndicator struct {
	spinner spinner.Model
}

func newSyncIndicator() syncIndicator {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return syncIndicator{spinner: s}
}

func (m syncIndicator) View(syncing bool) string {
	if !syncing {
		return "idle"
	}
	return m.spinner.View() + " syncing..."
}
