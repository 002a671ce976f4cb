// Package tui renders a terminal monitor of the sync queue: connection state,
// queue depth, the last drain and the entries that need attention.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/service"
)

type TUI struct {
	services *service.ClientServices
	logger   *logger.Logger
}

func New(services *service.ClientServices, log *logger.Logger) (*TUI, error) {
	if services == nil {
		return nil, ErrNoServices
	}
	return &TUI{services: services, logger: log}, nil
}

// Monitor runs the monitor until the user quits or ctx is cancelled.
func (t *TUI) Monitor(ctx context.Context) error {
	updates, unsubscribe := t.services.Status.Subscribe()
	defer unsubscribe()

	model := newMonitorModel(ctx, t.services, updates)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		t.logger.Err(err).Str("func", "*TUI.Monitor").Msg("monitor stopped with error")
	}
	return err
}
