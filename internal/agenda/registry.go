package agenda

import (
	"log/slog"
	"sync"
)

// Registry hands out one engine per manager. Engines are constructed lazily
// on first access and live for the lifetime of the process.
type Registry struct {
	mu            sync.Mutex
	remote        RemoteService
	provisionalID func() string
	logger        *slog.Logger
	engines       map[string]*Engine
}

// NewRegistry wires a registry producing engines bound to the given remote
// service.
func NewRegistry(remote RemoteService, provisionalID func() string, logger *slog.Logger) *Registry {
	return &Registry{
		remote:        remote,
		provisionalID: provisionalID,
		logger:        logger,
		engines:       make(map[string]*Engine),
	}
}

// EngineFor returns the engine owning the given manager's appointment set.
func (r *Registry) EngineFor(owner string) *Engine {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.engines[owner]; ok {
		return engine
	}
	engine := NewEngine(r.remote, owner, r.provisionalID, r.logger)
	r.engines[owner] = engine
	return engine
}
