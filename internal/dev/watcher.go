package dev

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/rrbuilder/internal/source"
)

// WatcherConfig configures the manifest watcher.
type WatcherConfig struct {
	// Interval is the delay between fingerprint checks.
	Interval time.Duration
}

// Watcher polls a manifest source and reports fingerprint changes.
type Watcher struct {
	source   source.Source
	config   WatcherConfig
	onChange func(fingerprint string)
	onError  func(error)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	last     string
	primed   bool
	failing  bool
}

// NewWatcher creates a new manifest watcher.
func NewWatcher(src source.Source, config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 500 * time.Millisecond
	}
	return &Watcher{
		source: src,
		config: config,
	}
}

// OnChange sets the callback for fingerprint changes.
func (w *Watcher) OnChange(fn func(fingerprint string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// OnError sets the callback for fingerprint failures. It fires once when
// the source starts failing, not on every poll.
func (w *Watcher) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Prime records the current fingerprint as the baseline without reporting
// it.
func (w *Watcher) Prime(ctx context.Context) {
	fp, err := w.source.Fingerprint(ctx)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.primed = true
	if err == nil {
		w.last = fp
	}
}

// Start polls until ctx is done or Stop is called. Without a prior Prime
// the first fingerprint becomes the baseline.
func (w *Watcher) Start(ctx context.Context) error {
	stopCh, ok := w.begin()
	if !ok {
		return nil
	}
	return w.poll(ctx, stopCh)
}

// begin marks the watcher running and returns its stop channel. It reports
// false when the watcher is already running. Stop closes the channel from
// this point on, even before poll starts.
func (w *Watcher) begin() (chan struct{}, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil, false
	}
	w.running = true
	w.stopCh = make(chan struct{})
	return w.stopCh, true
}

func (w *Watcher) poll(ctx context.Context, stopCh chan struct{}) error {
	w.mu.Lock()
	primed := w.primed
	w.mu.Unlock()
	if !primed {
		w.Prime(ctx)
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped(stopCh)
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// markStopped clears running unless a later begin replaced stopCh.
func (w *Watcher) markStopped(stopCh chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh == stopCh {
		w.running = false
	}
}

// Check takes one fingerprint and reports whether it changed.
func (w *Watcher) Check(ctx context.Context) bool {
	fp, err := w.source.Fingerprint(ctx)

	w.mu.Lock()
	onChange, onError := w.onChange, w.onError
	if err != nil {
		report := !w.failing
		w.failing = true
		w.mu.Unlock()
		if report && onError != nil {
			onError(err)
		}
		return false
	}
	recovered := w.failing
	w.failing = false
	changed := fp != w.last || recovered
	w.last = fp
	w.mu.Unlock()

	if changed && onChange != nil {
		onChange(fp)
	}
	return changed
}
