package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Config holds daemon settings.
type Config struct {
	// DebounceInterval is how long to wait after the last dump edit
	// before triggering a sync cycle. Editors and exports touch several
	// files in a burst; the debounce turns a burst into one cycle.
	DebounceInterval time.Duration
}

// DefaultConfig returns the default daemon configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 2 * time.Second,
	}
}

// CycleFunc runs one synchronization cycle.
// It reports success like Manager.Sync does.
type CycleFunc func(ctx context.Context) bool

// Daemon watches the dump directories and triggers a sync cycle after
// files change, debounced so bursts of edits run one cycle.
type Daemon struct {
	dumpDir string
	cycle   CycleFunc
	config  *Config
	logger  *log.Logger

	watcher *FileWatcher

	mu      sync.Mutex
	dirtyAt time.Time
	dirty   bool
	running bool

	wg   sync.WaitGroup
	stop context.CancelFunc
}

// New creates a daemon for the given dump directory.
// cycle is invoked for each debounced change burst, typically a closure
// over Manager.Sync. If logger is nil, a default stderr logger is used.
func New(dumpDir string, cycle CycleFunc, config *Config, logger *log.Logger) (*Daemon, error) {
	if cycle == nil {
		return nil, fmt.Errorf("cycle function is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	watcher, err := NewFileWatcher()
	if err != nil {
		return nil, err
	}

	return &Daemon{
		dumpDir: dumpDir,
		cycle:   cycle,
		config:  config,
		logger:  logger,
		watcher: watcher,
	}, nil
}

// Start begins watching and processing changes.
// Runs until Stop is called or ctx is canceled.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	if err := d.watcher.Start(d.dumpDir); err != nil {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.stop = cancel

	d.wg.Add(2)
	go d.watchFileEvents(runCtx)
	go d.processChanges(runCtx)

	d.logger.Printf("Watching %s", d.dumpDir)
	return nil
}

// Stop halts the daemon and waits for in-flight work to finish.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.mu.Unlock()

	if d.stop != nil {
		d.stop()
	}
	err := d.watcher.Stop()
	d.wg.Wait()
	return err
}

// watchFileEvents marks the dump dirty on every relevant event
func (d *Daemon) watchFileEvents(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.watcher.Events():
			if !ok {
				return
			}
			d.logger.Printf("Dump changed: %s %s", event.Op, event.Path)
			d.mu.Lock()
			d.dirty = true
			d.dirtyAt = time.Now()
			d.mu.Unlock()

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return
			}
			d.logger.Printf("Watcher error: %v", err)
		}
	}
}

// processChanges runs a sync cycle once a change burst settles
func (d *Daemon) processChanges(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			d.mu.Lock()
			due := d.dirty && time.Since(d.dirtyAt) >= d.config.DebounceInterval
			if due {
				d.dirty = false
			}
			d.mu.Unlock()

			if !due {
				continue
			}

			d.logger.Printf("Dump settled, starting sync cycle")
			if !d.cycle(ctx) {
				d.logger.Printf("Sync cycle failed; will retry on next change")
			}
		}
	}
}
