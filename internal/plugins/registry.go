package plugins

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
)

// Registry holds the loaded plugin set for this deployment. A plugin
// that fails to load is logged and skipped; startup never aborts over
// one misconfigured source.
type Registry struct {
	log     *logger.Logger
	plugins map[string]Plugin
	order   []string
}

func NewRegistry(enabled []string, log *logger.Logger) *Registry {
	regLog := log.With("component", "PluginRegistry")
	r := &Registry{
		log:     regLog,
		plugins: make(map[string]Plugin, len(enabled)),
	}
	for _, name := range enabled {
		factory, ok := builtins[name]
		if !ok {
			regLog.Error("Unknown plugin, skipping", "plugin", name)
			continue
		}
		p, err := factory(log)
		if err != nil {
			regLog.Error("Failed to load plugin, skipping", "plugin", name, "error", err)
			continue
		}
		r.plugins[name] = p
		r.order = append(r.order, name)
		regLog.Info("Loaded plugin", "plugin", name, "description", p.Description())
	}
	return r
}

func (r *Registry) Available() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Get(name string) (Plugin, error) {
	p, ok := r.plugins[name]
	if !ok {
		return nil, apierr.NotFoundf("plugin_not_found", "plugin %s not found", name)
	}
	return p, nil
}

// ExecuteAll runs every loaded plugin against the user payload. Plugin
// failures (error return or panic) are captured in that plugin's slot
// as {"error": message}; the returned map always has exactly one entry
// per loaded plugin and the call itself never fails.
func (r *Registry) ExecuteAll(ctx context.Context, userData map[string]any) map[string]map[string]any {
	results := make(map[string]map[string]any, len(r.plugins))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range r.order {
		name := name
		p := r.plugins[name]
		g.Go(func() error {
			res, err := r.executeIsolated(gctx, p, userData)
			if err != nil {
				r.log.Error("Plugin execution failed", "plugin", name, "error", err)
				res = map[string]any{"error": err.Error()}
			} else if !p.ValidateResponse(res) {
				r.log.Warn("Plugin returned invalid response", "plugin", name)
				res = map[string]any{"error": fmt.Sprintf("plugin %s returned an invalid response", name)}
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ExecuteOne is the targeted re-run path: unknown names are a NotFound
// error and plugin failures propagate to the caller unswallowed.
func (r *Registry) ExecuteOne(ctx context.Context, name string, userData map[string]any) (map[string]any, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, userData)
}

func (r *Registry) executeIsolated(ctx context.Context, p Plugin, userData map[string]any) (res map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin panic: %v", rec)
		}
	}()
	return p.Execute(ctx, userData)
}
