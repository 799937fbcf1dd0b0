// Package plugin runs an explicit, ordered set of extensions at well-defined
// points of the posting and rendering pipeline. Capabilities are individually
// optional: a plugin only implements the hook interfaces it cares about.
package plugin

import (
	"context"
	"fmt"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
	"github.com/14ChannelBBS/Qua/internal/logger"
)

// Plugin identifies an extension. Hook capabilities are separate interfaces;
// not implementing one is a no-op, never an error.
type Plugin interface {
	Id() string
	Name() string
	Version() string
}

type ThreadPostHook interface {
	OnThreadPost(ctx context.Context, event *domain.ThreadPostEvent) error
}

type ResponsePostHook interface {
	OnResponsePost(ctx context.Context, event *domain.ResponsePostEvent) error
}

type RenderingResponseHook interface {
	OnRenderingResponse(event *domain.RenderingResponseEvent) error
}

// Registry holds plugins in registration order. Built once at startup;
// read-only afterwards.
type Registry struct {
	plugins []Plugin
}

func NewRegistry(plugins ...Plugin) *Registry {
	for _, p := range plugins {
		logger.Log.Info("plugin registered", "id", p.Id(), "name", p.Name(), "version", p.Version())
	}
	return &Registry{plugins: plugins}
}

func (r *Registry) Plugins() []Plugin {
	return r.plugins
}

// FireThreadPost invokes every registered OnThreadPost hook in order against
// the same mutable event. A hook error or error-signal aborts the post.
func (r *Registry) FireThreadPost(ctx context.Context, event *domain.ThreadPostEvent) error {
	for _, p := range r.plugins {
		hook, ok := p.(ThreadPostHook)
		if !ok {
			continue
		}
		if err := r.invoke(p, func() error { return hook.OnThreadPost(ctx, event) }); err != nil {
			return err
		}
		if err := eventError(p, event.Err()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) FireResponsePost(ctx context.Context, event *domain.ResponsePostEvent) error {
	for _, p := range r.plugins {
		hook, ok := p.(ResponsePostHook)
		if !ok {
			continue
		}
		if err := r.invoke(p, func() error { return hook.OnResponsePost(ctx, event) }); err != nil {
			return err
		}
		if err := eventError(p, event.Err()); err != nil {
			return err
		}
	}
	return nil
}

// FireRenderingResponse runs per-device at delivery time, after persistence.
// Render hook failures are logged and skipped: a broken render plugin must
// not take down reads.
func (r *Registry) FireRenderingResponse(event *domain.RenderingResponseEvent) {
	for _, p := range r.plugins {
		hook, ok := p.(RenderingResponseHook)
		if !ok {
			continue
		}
		if err := r.invoke(p, func() error { return hook.OnRenderingResponse(event) }); err != nil {
			logger.Log.Error("render hook failed", "plugin", p.Id(), "error", err)
		}
	}
}

// invoke shields the pipeline from panicking hooks: a panic becomes an error
// attributed to the plugin instead of a dead request handler.
func (r *Registry) invoke(p Plugin, hook func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Error("plugin panicked", "plugin", p.Id(), "panic", rec)
			err = &internal_errors.BackendError{
				Code:    "PLUGIN_ERROR",
				Message: fmt.Sprintf("plugin %s failed", p.Id()),
			}
		}
	}()
	return hook()
}

func eventError(p Plugin, evErr *domain.EventError) error {
	if evErr == nil {
		return nil
	}
	if evErr.Critical {
		return &internal_errors.BackendError{Code: "PLUGIN_ERROR", Message: evErr.Message}
	}
	logger.Log.Warn("plugin flagged event", "plugin", p.Id(), "message", evErr.Message)
	return nil
}
