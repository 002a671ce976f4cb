package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-keeper/internal/service"
	"github.com/MKhiriev/go-offline-keeper/models"
)

const (
	refreshInterval = 2 * time.Second
	noticeTTL       = 3 * time.Second

	// failedListLimit caps the failed entries shown at once.
	failedListLimit = 20
)

type monitorModel struct {
	ctx      context.Context
	services *service.ClientServices
	updates  <-chan models.SyncStatus

	indicator syncIndicator

	status      models.SyncStatus
	failed      []models.QueueEntry
	idx         int
	usage       models.StorageUsage
	lastReport  *models.SyncReport
	lastCleanup *models.CleanupReport

	busy   bool
	notice string
	errMsg string

	copy func(string) error
}

func newMonitorModel(ctx context.Context, services *service.ClientServices, updates <-chan models.SyncStatus) monitorModel {
	return monitorModel{
		ctx:       ctx,
		services:  services,
		updates:   updates,
		indicator: newSyncIndicator(),
		copy:      clipboard.WriteAll,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.indicator.spinner.Tick,
		m.cmdRefresh(),
		m.cmdWaitStatus(),
		cmdTick(),
	)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)
	case statusMsg:
		m.status = models.SyncStatus(msg)
		return m, m.cmdWaitStatus()
	case snapshotMsg:
		m.status = msg.status
		m.usage = msg.usage
		m.errMsg = ""
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		m.failed = msg.failed
		if m.idx >= len(m.failed) {
			m.idx = len(m.failed) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		return m, nil
	case drainDoneMsg:
		m.busy = false
		report := msg.report
		m.lastReport = &report
		m.notice = drainNotice(report)
		return m, tea.Batch(m.cmdRefresh(), cmdClearNotice())
	case cleanupDoneMsg:
		m.busy = false
		report := msg.report
		m.lastCleanup = &report
		m.notice = fmt.Sprintf("cleanup removed %d rows", report.DeletedRecords)
		return m, tea.Batch(m.cmdRefresh(), cmdClearNotice())
	case tickMsg:
		return m, tea.Batch(m.cmdRefresh(), cmdTick())
	case clearNoticeMsg:
		m.notice = ""
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.indicator.spinner, cmd = m.indicator.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(msg, keys.down):
		if m.idx < len(m.failed)-1 {
			m.idx++
		}
	case key.Matches(msg, keys.sync):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.notice = "draining queue..."
		return m, m.cmdDrain(m.services.Sync.ProcessQueue)
	case key.Matches(msg, keys.retry):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.notice = "retrying failed entries..."
		return m, m.cmdDrain(m.services.Sync.RetryFailed)
	case key.Matches(msg, keys.cleanup):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.notice = "cleaning up..."
		return m, m.cmdCleanup()
	case key.Matches(msg, keys.copy):
		text := m.errorsText()
		if text == "" {
			m.notice = "nothing to copy"
			return m, cmdClearNotice()
		}
		if err := m.copy(text); err != nil {
			m.errMsg = fmt.Sprintf("copy failed: %v", err)
			return m, nil
		}
		m.notice = "errors copied"
		return m, cmdClearNotice()
	}

	return m, nil
}

// errorsText collects the last drain errors and the failed entries errors,
// one per line.
func (m monitorModel) errorsText() string {
	var lines []string
	if m.lastReport != nil {
		lines = append(lines, m.lastReport.Errors...)
	}
	for _, entry := range m.failed {
		if entry.Error != nil && *entry.Error != "" {
			lines = append(lines, fmt.Sprintf("%s %s %s: %s", entry.LocalID, entry.Operation, entry.Table, *entry.Error))
		}
	}
	return strings.Join(lines, "\n")
}

func drainNotice(report models.SyncReport) string {
	if report.Skipped != "" {
		return "drain skipped: " + report.Skipped
	}
	return fmt.Sprintf("synced %d, failed %d, pending %d", report.Synced, report.Failed, report.Pending)
}

func (m monitorModel) View() string {
	var out strings.Builder

	online := okStyle.Render("online")
	if !m.status.Online {
		online = warnStyle.Render("offline")
	}
	out.WriteString(row("Connection", online))
	out.WriteString(row("Pending", fmt.Sprintf("%d", m.status.PendingCount)))

	failed := fmt.Sprintf("%d", m.status.FailedCount)
	if m.status.FailedCount > 0 {
		failed = errorStyle.Render(failed)
	}
	out.WriteString(row("Failed", failed))
	out.WriteString(row("Sync", m.indicator.View(m.status.IsSyncing || m.busy)))
	out.WriteString(row("Last sync", formatTime(m.status.LastSyncAt)))
	out.WriteString(row("Storage", m.storageLine()))

	if m.lastReport != nil {
		out.WriteString(row("Last drain", drainNotice(*m.lastReport)))
		for _, e := range m.lastReport.Errors {
			out.WriteString(row("", errorStyle.Render(fitText(humanizeSyncError(e), 60))))
		}
	}
	if m.lastCleanup != nil {
		out.WriteString(row("Cleanup", fmt.Sprintf("%d entries, %d collections",
			m.lastCleanup.DeletedEntries, m.lastCleanup.DeletedMetadata)))
	}

	if m.notice != "" {
		out.WriteString("\nStatus: " + m.notice + "\n")
	}
	if m.errMsg != "" {
		out.WriteString("\n" + errorStyle.Render("Error: "+m.errMsg) + "\n")
	}

	if len(m.failed) > 0 {
		out.WriteString("\n  Local ID     │ Table            │ Op     │ Try │ Error\n")
		out.WriteString("───────────────┼──────────────────┼────────┼─────┼──────────────────\n")
		for i, entry := range m.failed {
			cursor := " "
			if i == m.idx {
				cursor = ">"
			}
			out.WriteString(fmt.Sprintf("%s %-12s │ %-16s │ %-6s │ %3d │ %s\n",
				cursor,
				fitText(entry.LocalID, 12),
				fitText(entry.Table, 16),
				entry.Operation,
				entry.Retries,
				fitText(valueOrDash(entry.Error), 40),
			))
		}
	}

	return renderPage(
		"SYNC MONITOR",
		strings.TrimRight(out.String(), "\n"),
		"s: sync │ r: retry failed │ c: cleanup │ y: copy errors │ ↑/↓: nav.",
	)
}

func (m monitorModel) storageLine() string {
	if !m.usage.Known {
		return "unknown"
	}

	line := formatMB(m.usage.UsageBytes)
	if m.usage.QuotaBytes > 0 {
		line += " / " + formatMB(m.usage.QuotaBytes)
	}
	if m.usage.IsNearLimit {
		line = warnStyle.Render(line + " (near limit)")
	}
	return line
}

func (m monitorModel) cmdRefresh() tea.Cmd {
	ctx := m.ctx
	svc := m.services

	return func() tea.Msg {
		failed, err := svc.Queue.List(ctx, models.StatusFailed, failedListLimit)
		return snapshotMsg{
			status: svc.Sync.Status(ctx),
			failed: failed,
			usage:  svc.Housekeeping.EstimateStorageUsage(ctx),
			err:    err,
		}
	}
}

// cmdWaitStatus blocks on the next pushed status. It yields nil once the
// subscription is closed, which stops the re-arm loop.
func (m monitorModel) cmdWaitStatus() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		status, ok := <-updates
		if !ok {
			return nil
		}
		return statusMsg(status)
	}
}

func (m monitorModel) cmdDrain(run func(context.Context) models.SyncReport) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return drainDoneMsg{report: run(ctx)}
	}
}

func (m monitorModel) cmdCleanup() tea.Cmd {
	ctx := m.ctx
	svc := m.services.Housekeeping

	return func() tea.Msg {
		return cleanupDoneMsg{report: svc.Cleanup(ctx)}
	}
}

func cmdTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func cmdClearNotice() tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}
