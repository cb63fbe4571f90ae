// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about full redraws, exports, and
// pointer-event dispatch.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the drawing core dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnDrawStart(ctx, nodes, links, notes)
//	// ... redraw ...
//	observability.Render().OnDrawComplete(ctx, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// RenderHooks receives events from the drawing orchestrator.
type RenderHooks interface {
	// OnDrawStart records the beginning of a full redraw with the entity
	// counts about to be drawn.
	OnDrawStart(ctx context.Context, functions, links, notes int)

	// OnDrawComplete records the end of a full redraw.
	OnDrawComplete(ctx context.Context, duration time.Duration, err error)

	// OnExportStart records the beginning of a scene export.
	OnExportStart(ctx context.Context, format string)

	// OnExportComplete records the end of a scene export with the output size.
	OnExportComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// InputHooks receives events from pointer-event dispatch.
type InputHooks interface {
	// OnDispatch records a pointer event delivered to a primitive handler.
	OnDispatch(ctx context.Context, kind string, handled bool)
}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnDrawStart(context.Context, int, int, int)                           {}
func (NoopRenderHooks) OnDrawComplete(context.Context, time.Duration, error)                 {}
func (NoopRenderHooks) OnExportStart(context.Context, string)                                {}
func (NoopRenderHooks) OnExportComplete(context.Context, string, int, time.Duration, error)  {}

// NoopInputHooks is a no-op implementation of InputHooks.
type NoopInputHooks struct{}

func (NoopInputHooks) OnDispatch(context.Context, string, bool) {}

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	inputHooks  InputHooks  = NoopInputHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any drawing.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetInputHooks registers custom input hooks.
// This should be called once at application startup before any dispatch.
func SetInputHooks(h InputHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		inputHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Input returns the registered input hooks.
func Input() InputHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return inputHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	inputHooks = NoopInputHooks{}
}
