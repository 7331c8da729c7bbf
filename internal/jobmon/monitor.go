// Package jobmon supervises the backend collection job from the dashboard.
//
// A Monitor runs one cycle at a time:
//
//	Idle -> Starting -> Running -> Completed | Failed
//	Idle -> Starting -> CommunicationError
//
// and every terminal phase reverts to Idle after a display window. The poll
// timer exists only while Running and is cancelled in the same critical
// section that leaves Running.
package jobmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/newsdash/internal/schedule"
	"github.com/kiranshivaraju/newsdash/pkg/models"
)

// Phase is the monitor's UI state.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseStarting           Phase = "starting"
	PhaseRunning            Phase = "running"
	PhaseCompleted          Phase = "completed"
	PhaseFailed             Phase = "failed"
	PhaseCommunicationError Phase = "communication_error"
)

// Trigger labels shown while a cycle is in progress.
const (
	LabelStarting    = "Running..."
	LabelCollecting  = "Collecting..."
	LabelCompleted   = "Collection complete"
	LabelCommError   = "Communication error"
	labelErrorPrefix = "Error: "

	errorLabelRunes = 20
)

// Backend is the part of the gateway the monitor talks to.
type Backend interface {
	StartCollection(ctx context.Context) bool
	CollectStatus(ctx context.Context) (*models.CollectStatus, bool)
}

// Refresher re-fetches stats and articles after a run ends.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Display receives every state change.
type Display interface {
	ShowJob(Snapshot)
}

// Config holds the monitor's fixed delays and the idle trigger label.
type Config struct {
	PollInterval         time.Duration
	RefreshDelay         time.Duration
	RevertDelay          time.Duration
	CommErrorRevertDelay time.Duration
	IdleLabel            string
}

// DefaultConfig returns the dashboard's standard timing.
func DefaultConfig() Config {
	return Config{
		PollInterval:         3 * time.Second,
		RefreshDelay:         time.Second,
		RevertDelay:          5 * time.Second,
		CommErrorRevertDelay: 3 * time.Second,
		IdleLabel:            "Collect now",
	}
}

// Snapshot is a copy of the monitor state.
type Snapshot struct {
	Phase         Phase   `json:"phase"`
	CycleID       string  `json:"cycle_id,omitempty"`
	StatusMessage *string `json:"status_message"`
	LastError     *string `json:"last_error"`
	Label         string  `json:"label"`
	Enabled       bool    `json:"enabled"`
}

// Monitor owns the state of one collection cycle and all of its timers.
type Monitor struct {
	backend   Backend
	refresher Refresher
	display   Display
	sched     schedule.Scheduler
	cfg       Config

	mu            sync.Mutex
	phase         Phase
	cycle         uuid.UUID
	statusMessage *string
	lastError     *string
	label         string
	savedLabel    string
	enabled       bool
	poll          schedule.Handle
	followUp      schedule.Handle
}

// NewMonitor creates an idle Monitor. display may be nil.
func NewMonitor(backend Backend, refresher Refresher, display Display, sched schedule.Scheduler, cfg Config) *Monitor {
	m := &Monitor{
		backend:   backend,
		refresher: refresher,
		display:   display,
		sched:     sched,
		cfg:       cfg,
		phase:     PhaseIdle,
		label:     cfg.IdleLabel,
		enabled:   true,
	}
	m.mu.Lock()
	m.publishLocked()
	m.mu.Unlock()
	return m
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Trigger starts a collection cycle and reports whether it did. It is
// ignored unless the monitor is Idle. The start request runs on the
// caller's goroutine; polling continues in the background.
func (m *Monitor) Trigger(ctx context.Context) bool {
	m.mu.Lock()
	if m.phase != PhaseIdle {
		slog.Info("collect trigger ignored", "phase", m.phase, "cycle_id", m.cycle)
		m.mu.Unlock()
		return false
	}

	cycle := uuid.New()
	m.cycle = cycle
	m.savedLabel = m.label
	m.statusMessage = nil
	m.lastError = nil
	m.setPhaseLocked(PhaseStarting, LabelStarting)
	m.mu.Unlock()

	slog.Info("collection starting", "cycle_id", cycle)
	// The cycle is owned by the monitor; the start request outlives the caller.
	ok := m.backend.StartCollection(context.WithoutCancel(ctx))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cycle != cycle || m.phase != PhaseStarting {
		return true
	}

	if !ok {
		slog.Warn("collection start failed", "cycle_id", cycle)
		m.setPhaseLocked(PhaseCommunicationError, LabelCommError)
		m.followUp = m.sched.After(m.cfg.CommErrorRevertDelay, func() { m.revert(cycle) })
		return true
	}

	m.poll = m.sched.Every(m.cfg.PollInterval, func() { m.pollStatus(cycle) })
	m.setPhaseLocked(PhaseRunning, LabelCollecting)
	return true
}

// pollStatus handles one poll tick. Ticks from a finished cycle are ignored.
func (m *Monitor) pollStatus(cycle uuid.UUID) {
	if !m.isCurrent(cycle, PhaseRunning) {
		return
	}

	status, ok := m.backend.CollectStatus(context.Background())
	if !ok {
		slog.Warn("collect status unavailable", "cycle_id", cycle)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cycle != cycle || m.phase != PhaseRunning {
		return
	}

	if status.IsCollecting {
		m.statusMessage = status.Message
		label := LabelCollecting
		if status.Message != nil && *status.Message != "" {
			label = *status.Message
		}
		m.setPhaseLocked(PhaseRunning, label)
		return
	}

	m.cancelPollLocked()

	if status.LastError != nil && *status.LastError != "" {
		m.lastError = status.LastError
		slog.Error("collection failed", "cycle_id", cycle, "error", *status.LastError)
		m.setPhaseLocked(PhaseFailed, errorLabel(*status.LastError))
	} else {
		slog.Info("collection completed", "cycle_id", cycle)
		m.setPhaseLocked(PhaseCompleted, LabelCompleted)
	}

	m.followUp = m.sched.After(m.cfg.RefreshDelay, func() { m.afterTerminal(cycle) })
}

// afterTerminal refreshes the view once and arms the revert.
func (m *Monitor) afterTerminal(cycle uuid.UUID) {
	m.mu.Lock()
	if m.cycle != cycle || (m.phase != PhaseCompleted && m.phase != PhaseFailed) {
		m.mu.Unlock()
		return
	}
	m.followUp = m.sched.After(m.cfg.RevertDelay, func() { m.revert(cycle) })
	m.mu.Unlock()

	m.refresher.Refresh(context.Background())
}

// revert returns the trigger to Idle after a terminal phase.
func (m *Monitor) revert(cycle uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cycle != cycle || !isTerminal(m.phase) {
		return
	}

	m.followUp = nil
	m.statusMessage = nil
	m.lastError = nil
	m.enabled = true
	m.phase = PhaseIdle
	m.label = m.savedLabel
	m.publishLocked()
	slog.Debug("collect trigger restored", "cycle_id", cycle)
}

// Stop cancels every live timer. The monitor state is left as is.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelPollLocked()
	if m.followUp != nil {
		m.followUp.Cancel()
		m.followUp = nil
	}
	// invalidates any callback already past its timer
	m.cycle = uuid.Nil
}

func (m *Monitor) isCurrent(cycle uuid.UUID, phase Phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycle == cycle && m.phase == phase
}

func (m *Monitor) cancelPollLocked() {
	if m.poll != nil {
		m.poll.Cancel()
		m.poll = nil
	}
}

func (m *Monitor) setPhaseLocked(phase Phase, label string) {
	m.phase = phase
	m.label = label
	m.enabled = false
	m.publishLocked()
}

func (m *Monitor) publishLocked() {
	if m.display != nil {
		m.display.ShowJob(m.snapshotLocked())
	}
}

func (m *Monitor) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:         m.phase,
		StatusMessage: m.statusMessage,
		LastError:     m.lastError,
		Label:         m.label,
		Enabled:       m.enabled,
	}
	if m.cycle != uuid.Nil && m.phase != PhaseIdle {
		s.CycleID = m.cycle.String()
	}
	return s
}

// pollLive reports whether a poll timer is armed.
func (m *Monitor) pollLive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poll != nil
}

func isTerminal(p Phase) bool {
	switch p {
	case PhaseCompleted, PhaseFailed, PhaseCommunicationError:
		return true
	default:
		return false
	}
}

// errorLabel shortens a backend error for the trigger label.
func errorLabel(msg string) string {
	r := []rune(msg)
	if len(r) > errorLabelRunes {
		r = r[:errorLabelRunes]
	}
	return labelErrorPrefix + string(r) + "..."
}
