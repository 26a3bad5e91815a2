package tutor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/phrazzld/scry-tutor/internal/events"
	"github.com/phrazzld/scry-tutor/internal/generation"
)

// Registry holds one workspace per user. Workspaces idle for longer than
// the configured timeout are evicted and recreated empty on next access,
// unless a remote call is still in flight for them.
//
// The cache only tracks idle time; live holds the workspaces themselves so
// an expired entry the janitor has not collected yet is still found.
type Registry struct {
	tutor   generation.Tutor
	emitter events.EventEmitter
	logger  *slog.Logger
	opts    []WorkspaceOption

	cache *cache.Cache
	mu    sync.Mutex
	live  map[string]*Workspace
}

// NewRegistry creates a registry. A non-positive idleTimeout keeps
// workspaces forever.
func NewRegistry(
	tutor generation.Tutor,
	emitter events.EventEmitter,
	idleTimeout time.Duration,
	l *slog.Logger,
	opts ...WorkspaceOption,
) *Registry {
	if l == nil {
		l = slog.Default()
	}
	expiry := idleTimeout
	cleanup := idleTimeout
	if idleTimeout <= 0 {
		expiry = cache.NoExpiration
		cleanup = 0
	}
	r := &Registry{
		tutor:   tutor,
		emitter: emitter,
		logger:  l.With(slog.String("component", "workspace_registry")),
		opts:    opts,
		cache:   cache.New(expiry, cleanup),
		live:    make(map[string]*Workspace),
	}
	r.cache.OnEvicted(r.onEvicted)
	return r
}

// Get returns the user's workspace, creating it on first use. Every access
// refreshes the idle timer.
func (r *Registry) Get(userID uuid.UUID) *Workspace {
	key := userID.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.live[key]; ok {
		r.cache.SetDefault(key, ws)
		return ws
	}

	ws := NewWorkspace(userID, r.tutor, r.emitter, r.logger, r.opts...)
	r.live[key] = ws
	r.cache.SetDefault(key, ws)
	r.logger.Debug("workspace created", slog.String("user_id", key))
	return ws
}

// onEvicted drops an idle workspace. A workspace with a remote call in
// flight gets a fresh idle timer instead, so the result lands in the
// workspace the user sees next.
func (r *Registry) onEvicted(key string, value interface{}) {
	ws, ok := value.(*Workspace)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live[key] != ws {
		return
	}
	if ws.State().Busy {
		r.cache.SetDefault(key, ws)
		r.logger.Debug("kept busy workspace past idle timeout", slog.String("user_id", key))
		return
	}
	delete(r.live, key)
	r.logger.Debug("workspace evicted", slog.String("user_id", key))
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
