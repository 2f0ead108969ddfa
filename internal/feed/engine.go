// Package feed runs the playback rotation over the currently eligible videos.
package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/airtime-feed/backend/internal/models"
	"github.com/airtime-feed/backend/internal/schedule"
)

// State is the engine's display state.
type State string

const (
	// StateEmpty means no video is eligible; viewers get the fallback screen.
	StateEmpty State = "empty"
	// StatePlaying means Snapshot.Video is on air.
	StatePlaying State = "playing"
)

const (
	DefaultRotationInterval = 30 * time.Second
	DefaultRefreshInterval  = 60 * time.Second
	DefaultFetchTimeout     = 10 * time.Second
)

// Repository supplies the video list, in insertion order.
type Repository interface {
	List(ctx context.Context) ([]models.Video, error)
}

// Snapshot is a copy of the rotation state at one instant.
type Snapshot struct {
	State         State         `json:"state"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	Video         *models.Video `json:"video,omitempty"`
	UsingDefaults bool          `json:"usingDefaults"`
	LastAdvanceAt time.Time     `json:"lastAdvanceAt"`
}

// Config holds engine timings and the fallback list.
type Config struct {
	// RotationInterval is the time each video stays on air.
	RotationInterval time.Duration
	// RefreshInterval re-polls the repository; zero fetches only once at start.
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	// Defaults are shown when the repository is empty or unreachable.
	Defaults []models.Video
}

// Engine keeps a cyclic pointer over the eligible videos.
// Start runs the rotation and refresh tickers; Refresh and Tick can also be
// driven directly.
type Engine struct {
	repo         Repository
	evaluator    *schedule.Evaluator
	clock        schedule.Clock
	logger       *zap.Logger
	rotateEvery  time.Duration
	refreshEvery time.Duration
	fetchTimeout time.Duration
	defaults     []models.Video

	mu            sync.Mutex
	records       []models.Video
	usingDefaults bool
	eligible      []models.Video
	state         State
	index         int
	lastAdvanceAt time.Time
	listeners     []func(Snapshot)

	runMu    sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	reloadCh chan struct{}
}

// NewEngine creates a rotation engine in the Empty state.
func NewEngine(repo Repository, evaluator *schedule.Evaluator, clock schedule.Clock, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = schedule.RealClock{}
	}
	if evaluator == nil {
		evaluator = schedule.NewEvaluator(nil)
	}
	if cfg.RotationInterval <= 0 {
		cfg.RotationInterval = DefaultRotationInterval
	}
	if cfg.RefreshInterval < 0 {
		cfg.RefreshInterval = 0
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if len(cfg.Defaults) == 0 {
		cfg.Defaults = DefaultVideos()
	}
	return &Engine{
		repo:         repo,
		evaluator:    evaluator,
		clock:        clock,
		logger:       logger,
		rotateEvery:  cfg.RotationInterval,
		refreshEvery: cfg.RefreshInterval,
		fetchTimeout: cfg.FetchTimeout,
		defaults:     cfg.Defaults,
		state:        StateEmpty,
		reloadCh:     make(chan struct{}, 1),
	}
}

// OnChange registers fn to be called after the displayed video or the state changes.
func (e *Engine) OnChange(fn func(Snapshot)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// Refresh fetches the video list and re-derives the eligible set.
// A failed fetch, or one with no active records, switches to the default list.
func (e *Engine) Refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	list, err := e.repo.List(fetchCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	list = activeOnly(list)
	usingDefaults := false
	switch {
	case err != nil:
		refreshFailuresTotal.Inc()
		e.logger.Warn("feed refresh failed, using default videos", zap.Error(err))
		list, usingDefaults = e.defaults, true
	case len(list) == 0:
		list, usingDefaults = e.defaults, true
	}

	e.mu.Lock()
	prevState, prevID := e.state, e.currentIDLocked()
	e.records = list
	e.usingDefaults = usingDefaults
	e.recomputeLocked(e.clock.Now())
	e.finishLocked(prevState, prevID)
}

// Tick re-derives eligibility at now and advances to the next video.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	prevState, prevID := e.state, e.currentIDLocked()
	kept := e.recomputeLocked(now)
	switch {
	case prevState == StatePlaying && e.state == StatePlaying && kept:
		e.index = (e.index + 1) % len(e.eligible)
		e.lastAdvanceAt = now
		rotationsTotal.Inc()
	case prevState == StatePlaying && e.state == StatePlaying:
		// the video on air left the list; index 0 is already the next one
		e.lastAdvanceAt = now
		rotationsTotal.Inc()
	}
	e.finishLocked(prevState, prevID)
}

// Current returns the video on air, if any.
func (e *Engine) Current() (models.Video, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return models.Video{}, false
	}
	return e.eligible[e.index], true
}

// Snapshot returns a copy of the current rotation state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Start begins the rotation loop. Call Stop() to release resources.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.run(ctx)
	e.logger.Info("feed engine started", zap.Duration("rotation_interval", e.rotateEvery), zap.Duration("refresh_interval", e.refreshEvery))
}

// Stop stops both tickers and waits for the loop to exit.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.cancel == nil {
		return
	}
	e.cancel()
	e.cancel = nil
	<-e.done
	e.logger.Info("feed engine stopped")
}

// Reload asks the running loop to refresh now (e.g. after an upload).
func (e *Engine) Reload() {
	select {
	case e.reloadCh <- struct{}{}:
	default:
	}
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	e.Refresh(ctx)

	rotate := time.NewTicker(e.rotateEvery)
	defer rotate.Stop()
	var refreshC <-chan time.Time
	if e.refreshEvery > 0 {
		refresh := time.NewTicker(e.refreshEvery)
		defer refresh.Stop()
		refreshC = refresh.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.reloadCh:
			e.Refresh(ctx)
		case <-refreshC:
			e.Refresh(ctx)
		case <-rotate.C:
			e.Tick(e.clock.Now())
		}
	}
}

// recomputeLocked rebuilds the eligible list and keeps the current video
// on air when it is still eligible, wherever it moved to. It reports whether
// the previous video was found again.
func (e *Engine) recomputeLocked(now time.Time) bool {
	prevID := e.currentIDLocked()
	e.eligible = e.evaluator.Filter(e.records, now)
	eligibleVideos.Set(float64(len(e.eligible)))

	switch {
	case len(e.eligible) == 0:
		e.state = StateEmpty
		e.index = 0
	case e.state == StateEmpty:
		e.state = StatePlaying
		e.index = 0
		e.lastAdvanceAt = now
	default:
		e.index = 0
		for i, v := range e.eligible {
			if v.ID == prevID {
				e.index = i
				return true
			}
		}
	}
	return false
}

// activeOnly drops records switched off with isActive false, so a store
// holding only inactive records falls back to the defaults like an empty one.
func activeOnly(list []models.Video) []models.Video {
	out := make([]models.Video, 0, len(list))
	for _, v := range list {
		if v.Active() {
			out = append(out, v)
		}
	}
	return out
}

// finishLocked releases e.mu and notifies listeners if the display changed.
func (e *Engine) finishLocked(prevState State, prevID string) {
	changed := e.state != prevState || e.currentIDLocked() != prevID
	snap := e.snapshotLocked()
	listeners := make([]func(Snapshot), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	if !changed {
		return
	}
	if snap.Video != nil {
		e.logger.Info("feed video changed", zap.String("video_id", snap.Video.ID), zap.Int("index", snap.Index), zap.Int("total", snap.Total))
	} else {
		e.logger.Info("feed has no eligible videos")
	}
	for _, fn := range listeners {
		fn(snap)
	}
}

func (e *Engine) currentIDLocked() string {
	if e.state != StatePlaying || e.index >= len(e.eligible) {
		return ""
	}
	return e.eligible[e.index].ID
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:         e.state,
		Index:         e.index,
		Total:         len(e.eligible),
		UsingDefaults: e.usingDefaults,
		LastAdvanceAt: e.lastAdvanceAt,
	}
	if e.state == StatePlaying {
		v := e.eligible[e.index]
		s.Video = &v
	}
	return s
}
