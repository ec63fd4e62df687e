// internal/session/manager.go

// Package session owns the lifecycle of a call: creation, the per-turn
// pipeline (extract, process, render), and finalization. The engine
// stays pure; everything stateful or I/O-bound lives here.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/common/metrics"
	"coldcall-backend/internal/engine"
	"coldcall-backend/internal/extraction"
	"coldcall-backend/internal/prospect"
	"coldcall-backend/internal/wording"
)

// Finalizer receives the terminal state of every ended session. The
// report pipeline implements it; failures there never fail the call.
type Finalizer interface {
	Finalize(ctx context.Context, state *engine.State, outcome *engine.Outcome)
}

// StartResult is what a new session returns to the caller.
type StartResult struct {
	SessionID    string `json:"sessionId"`
	Status       string `json:"status"`
	AgentText    string `json:"agentText"`
	ProspectMode string `json:"prospectMode"`
}

// TurnOutput is the result of one processed turn. For a turn submitted
// to an already-completed session it carries the stored outcome instead.
type TurnOutput struct {
	SessionID      string                 `json:"sessionId"`
	Status         string                 `json:"status"`
	AgentText      string                 `json:"agentText,omitempty"`
	ProspectText   string                 `json:"prospectText,omitempty"`
	ProspectSource string                 `json:"prospectSource,omitempty"`
	Action         *engine.Action         `json:"action,omitempty"`
	Score          float64                `json:"score"`
	Label          string                 `json:"label,omitempty"`
	Ended          bool                   `json:"ended"`
	Outcome        *engine.Outcome        `json:"outcome,omitempty"`
	WordingSource  string                 `json:"wordingSource,omitempty"`
	Ignored        []engine.IgnoredSignal `json:"ignored,omitempty"`
}

// Manager drives the turn pipeline. One turn per session at a time;
// concurrent turns on the same session are rejected, not queued.
type Manager struct {
	engine    *engine.Engine
	store     *Store
	extractor extraction.Extractor
	wording   *wording.Chain
	prospect  *prospect.Chain
	finalizer Finalizer
	opener    string
	mode      string
	logger    logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ManagerOptions wires the manager's collaborators. Finalizer is
// optional; Opener and DefaultMode fall back to package defaults.
type ManagerOptions struct {
	Engine      *engine.Engine
	Store       *Store
	Extractor   extraction.Extractor
	Wording     *wording.Chain
	Prospect    *prospect.Chain
	Finalizer   Finalizer
	Opener      string
	DefaultMode string
}

func NewManager(opts ManagerOptions, log logger.Logger) *Manager {
	opener := opts.Opener
	if opener == "" {
		opener = wording.DefaultOpener
	}
	mode := opts.DefaultMode
	if mode == "" {
		mode = "scripted"
	}
	return &Manager{
		engine:    opts.Engine,
		store:     opts.Store,
		extractor: opts.Extractor,
		wording:   opts.Wording,
		prospect:  opts.Prospect,
		finalizer: opts.Finalizer,
		opener:    opener,
		mode:      mode,
		logger: log.WithFields(map[string]interface{}{
			"component": "session-manager",
		}),
		locks: make(map[string]*sync.Mutex),
	}
}

// StartSession creates a fresh session and returns the agent's opener.
func (m *Manager) StartSession(ctx context.Context, prospectMode string) (*StartResult, error) {
	if prospectMode == "" {
		prospectMode = m.mode
	}
	if prospectMode != "scripted" && prospectMode != "llm" {
		return nil, commonerrors.NewValidationFailedError(
			"prospect_mode must be \"scripted\" or \"llm\"")
	}

	sessionID := uuid.New().String()
	rec := &Record{
		SessionID:     sessionID,
		Status:        StatusRunning,
		ProspectMode:  prospectMode,
		LastAgentText: m.opener,
		State:         engine.NewState(sessionID),
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	metrics.SessionsActive.Inc()
	m.logger.Info("session created", map[string]interface{}{
		"sessionId":    sessionID,
		"prospectMode": prospectMode,
	})

	return &StartResult{
		SessionID:    sessionID,
		Status:       StatusRunning,
		AgentText:    m.opener,
		ProspectMode: prospectMode,
	}, nil
}

// ProcessInput runs one prospect utterance through the full pipeline:
// extraction, engine turn, wording, persistence, and finalization when
// the call ends.
func (m *Manager) ProcessInput(ctx context.Context, sessionID, userText string) (*TurnOutput, error) {
	lock := m.sessionLock(sessionID)
	if !lock.TryLock() {
		return nil, commonerrors.NewSessionBusyError(sessionID)
	}
	defer lock.Unlock()

	return m.processInputLocked(ctx, sessionID, userText)
}

// processInputLocked is the turn pipeline body. The caller holds the
// session lock.
func (m *Manager) processInputLocked(ctx context.Context, sessionID, userText string) (*TurnOutput, error) {
	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		m.dropLockIfGone(sessionID, err)
		return nil, err
	}

	// A turn against a completed session returns the stored outcome
	// rather than an error, so clients can re-poll safely.
	if rec.Status == StatusCompleted {
		m.dropSessionLock(sessionID)
		return m.completedOutput(rec), nil
	}

	sig, err := m.extractor.Extract(ctx, &extraction.Request{
		SessionID:     sessionID,
		UserText:      userText,
		TurnIndex:     rec.State.TurnIndex,
		LastAskedSlot: string(rec.State.LastAskedSlot),
		KnownFields:   knownFields(rec.State),
	})
	if err != nil {
		metrics.TurnsFailed.WithLabelValues(string(commonerrors.ErrCodeExtractionFailed)).Inc()
		return nil, commonerrors.NewExtractionFailedError(err)
	}
	sig.UserText = userText

	res, err := m.engine.ProcessTurn(rec.State, sig)
	if err != nil {
		// Status said running but state says ended: treat as completed.
		metrics.TurnsFailed.WithLabelValues(string(commonerrors.ErrCodeSessionCompleted)).Inc()
		return nil, commonerrors.NewSessionCompletedError(sessionID)
	}

	agentText, wordingSource := m.wording.RenderWithSource(ctx, &wording.Request{
		SessionID:     sessionID,
		Action:        res.Action,
		KnownFields:   knownFields(rec.State),
		Objections:    objectionNames(rec.State),
		LastAgentText: rec.LastAgentText,
		LastUserText:  userText,
		TurnIndex:     rec.State.TurnIndex,
	})

	if lt := rec.State.LastTrace(); lt != nil {
		lt.AgentText = agentText
		lt.WordingSource = wordingSource
	}
	rec.LastAgentText = agentText

	metrics.TurnsProcessed.WithLabelValues(string(res.Action.Type)).Inc()
	for _, ig := range res.Ignored {
		metrics.SignalsIgnored.WithLabelValues(ig.Kind, string(ig.Reason)).Inc()
	}

	var outcome *engine.Outcome
	if res.Ended {
		outcome, err = m.engine.BuildOutcome(rec.State)
		if err != nil {
			return nil, err
		}
		rec.Status = StatusCompleted
		rec.Outcome = outcome
	}

	// Persist before finalizing so the last turn survives a report
	// pipeline failure.
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	if res.Ended {
		metrics.SessionsActive.Dec()
		metrics.SessionsEnded.WithLabelValues(string(outcome.EndReason), outcome.Label).Inc()
		m.logger.Info("session ended", map[string]interface{}{
			"sessionId": sessionID,
			"reason":    string(outcome.EndReason),
			"score":     outcome.Score,
			"label":     outcome.Label,
		})
		if m.finalizer != nil {
			m.finalizer.Finalize(ctx, rec.State, outcome)
		}
		m.dropSessionLock(sessionID)
	}

	m.logger.Info("turn processed", map[string]interface{}{
		"sessionId":        sessionID,
		"turn":             rec.State.TurnIndex,
		"action":           string(res.Action.Type),
		"score":            res.Score,
		"label":            res.Label,
		"extractionSource": sig.Source,
		"wordingSource":    wordingSource,
	})

	status := StatusRunning
	if res.Ended {
		status = StatusCompleted
	}
	return &TurnOutput{
		SessionID:     sessionID,
		Status:        status,
		AgentText:     agentText,
		Action:        &res.Action,
		Score:         res.Score,
		Label:         res.Label,
		Ended:         res.Ended,
		Outcome:       outcome,
		WordingSource: wordingSource,
		Ignored:       res.Ignored,
	}, nil
}

// ProspectTurn generates the simulated prospect's next utterance and
// feeds it through the turn pipeline as if a human had typed it. The
// session lock covers generation too, so two concurrent prospect turns
// cannot both reply to the same agent utterance.
func (m *Manager) ProspectTurn(ctx context.Context, sessionID string) (*TurnOutput, error) {
	lock := m.sessionLock(sessionID)
	if !lock.TryLock() {
		return nil, commonerrors.NewSessionBusyError(sessionID)
	}
	defer lock.Unlock()

	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		m.dropLockIfGone(sessionID, err)
		return nil, err
	}
	if rec.Status == StatusCompleted {
		m.dropSessionLock(sessionID)
		return m.completedOutput(rec), nil
	}

	req := &prospect.Request{
		SessionID:   sessionID,
		AgentText:   rec.LastAgentText,
		TurnIndex:   rec.State.TurnIndex,
		KnownFields: knownFields(rec.State),
		Objections:  objectionNames(rec.State),
	}

	var text, source string
	if rec.ProspectMode == "llm" {
		text, source = m.prospect.NextWithSource(ctx, req)
	} else {
		scripted := prospect.NewScripted()
		text, _ = scripted.NextUtterance(ctx, req)
		source = prospect.SourceScripted
	}

	out, err := m.processInputLocked(ctx, sessionID, text)
	if err != nil {
		return nil, err
	}
	out.ProspectText = text
	out.ProspectSource = source
	return out, nil
}

// EndCall force-ends a running session. Idempotent: ending a completed
// session returns the stored outcome.
func (m *Manager) EndCall(ctx context.Context, sessionID string) (*engine.Outcome, error) {
	lock := m.sessionLock(sessionID)
	if !lock.TryLock() {
		return nil, commonerrors.NewSessionBusyError(sessionID)
	}
	defer lock.Unlock()

	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		m.dropLockIfGone(sessionID, err)
		return nil, err
	}
	if rec.Status == StatusCompleted && rec.Outcome != nil {
		m.dropSessionLock(sessionID)
		return rec.Outcome, nil
	}

	rec.State.Ended = true
	if rec.State.EndReason == "" {
		rec.State.EndReason = engine.EndReasonUserEnded
	}

	outcome, err := m.engine.BuildOutcome(rec.State)
	if err != nil {
		return nil, err
	}
	rec.Status = StatusCompleted
	rec.Outcome = outcome

	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	metrics.SessionsActive.Dec()
	metrics.SessionsEnded.WithLabelValues(string(outcome.EndReason), outcome.Label).Inc()
	m.logger.Info("session force-ended", map[string]interface{}{
		"sessionId": sessionID,
		"score":     outcome.Score,
		"label":     outcome.Label,
	})
	if m.finalizer != nil {
		m.finalizer.Finalize(ctx, rec.State, outcome)
	}
	m.dropSessionLock(sessionID)

	return outcome, nil
}

// GetOutcome returns the final report of a completed session.
func (m *Manager) GetOutcome(ctx context.Context, sessionID string) (*engine.Outcome, error) {
	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusCompleted || rec.Outcome == nil {
		return nil, commonerrors.NewOutcomeNotReadyError(sessionID)
	}
	return rec.Outcome, nil
}

// GetTrace returns the full per-turn decision trace.
func (m *Manager) GetTrace(ctx context.Context, sessionID string) ([]engine.TraceEntry, error) {
	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return rec.State.Trace, nil
}

func (m *Manager) completedOutput(rec *Record) *TurnOutput {
	out := &TurnOutput{
		SessionID: rec.SessionID,
		Status:    StatusCompleted,
		Ended:     true,
		Outcome:   rec.Outcome,
	}
	if rec.Outcome != nil {
		out.Score = rec.Outcome.Score
		out.Label = rec.Outcome.Label
	}
	return out
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}

// dropSessionLock prunes the lock map once a session can no longer
// mutate state. A caller holding the old mutex is unaffected: completed
// or missing sessions only ever serve stored data.
func (m *Manager) dropSessionLock(sessionID string) {
	m.mu.Lock()
	delete(m.locks, sessionID)
	m.mu.Unlock()
}

// dropLockIfGone prunes the lock entry when the store says the session
// does not exist, so expired sessions do not leak map entries.
func (m *Manager) dropLockIfGone(sessionID string, err error) {
	if stdErr, ok := commonerrors.AsStandardError(err); ok && stdErr.Code == commonerrors.ErrCodeSessionNotFound {
		m.dropSessionLock(sessionID)
	}
}

func knownFields(state *engine.State) map[string]string {
	out := make(map[string]string)
	for _, s := range state.FilledSlots() {
		out[string(s)] = state.Slot(s).Value
	}
	return out
}

func objectionNames(state *engine.State) []string {
	var out []string
	for _, t := range engine.AllObjectionTypes() {
		if rec, ok := state.Objections[t]; ok && rec.OccurrenceCount > 0 {
			out = append(out, string(t))
		}
	}
	return out
}
