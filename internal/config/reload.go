package config

import (
	"sync"

	"github.com/dshills/undoredo/internal/config/watcher"
	"github.com/dshills/undoredo/internal/logging"
)

// ReloadHandler is called after the configuration file changed and was
// loaded successfully.
type ReloadHandler func(old, updated *Config)

// Reloader keeps a configuration current with its file.
type Reloader struct {
	mu       sync.RWMutex
	path     string
	current  *Config
	handlers []ReloadHandler

	watcher *watcher.Watcher
	logger  *logging.Logger
}

// NewReloader creates a reloader for the file at path, starting from initial.
// The file is not watched until Start is called.
func NewReloader(path string, initial *Config, logger *logging.Logger, opts ...watcher.Option) (*Reloader, error) {
	if logger == nil {
		logger = logging.Null()
	}
	if initial == nil {
		initial = Default()
	}

	r := &Reloader{
		path:    path,
		current: initial,
		logger:  logger.WithComponent("config"),
	}

	opts = append(opts, watcher.WithErrorHandler(func(err error) {
		r.logger.Warn("config watcher error: %v", err)
	}))
	w, err := watcher.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	r.watcher = w
	w.OnChange(r.handleEvent)
	return r, nil
}

// OnReload registers a handler run after each successful reload.
func (r *Reloader) OnReload(h ReloadHandler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Current returns the most recently loaded configuration.
func (r *Reloader) Current() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Start begins watching the file.
func (r *Reloader) Start() error {
	return r.watcher.Start()
}

// Close stops watching and releases the watcher.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}

// Reload loads the file now. On error the current configuration is kept.
func (r *Reloader) Reload() error {
	cfg, err := Load(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.current
	r.current = cfg
	handlers := make([]ReloadHandler, len(r.handlers))
	copy(handlers, r.handlers)
	r.mu.Unlock()

	r.logger.Info("configuration reloaded from %s", r.path)
	for _, h := range handlers {
		h(old, cfg)
	}
	return nil
}

func (r *Reloader) handleEvent(event watcher.Event) {
	if event.Op == watcher.OpRemove || event.Op == watcher.OpRename {
		r.logger.Debug("config file %s: %s, keeping current settings", event.Path, event.Op)
		return
	}
	if err := r.Reload(); err != nil {
		r.logger.Warn("config reload failed, keeping current settings: %v", err)
	}
}
