// Package engine runs long-lived worker modules sharing one lifecycle and one
// in-process event bus.
package engine

import (
	"context"
	"sync"
	"time"

	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Engine manages shared resources and execution lifecycle of each module. It
// maintains a shared event bus
type Engine struct {
	// A list of modules that will be run in this Engine. Module's lifetime is
	// bound to Engine's lifetime. Each Module will be ran in a separate routine.
	Modules []Module

	// Root this engine is running on
	ctx context.Context

	// Cancel function for root context, used for graceful shutdown
	cancel context.CancelFunc

	// The EventBus this engine managed. Notifications and live events flow
	// through it between modules.
	EventBus *gochannel.GoChannel

	RetryDelay time.Duration
}

// Create a new Engine given the provided modules and event bus.
func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:    ms,
		ctx:        ctx,
		cancel:     cancel,
		EventBus:   e,
		RetryDelay: GracefulRetryDelay,
	}
}

// Execute all Engine modules and wait untils all modules to finish execution.
func (e *Engine) Run() {
	var wg sync.WaitGroup

	for idx := range e.Modules {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()
			Logger.Log.Infof("start engine module %s", m.Name())
			RunModuleWithGracefulRestart(e.ctx, m, e.RetryDelay)
			Logger.Log.Infof("module %s finished execution", m.Name())
		}(e.Modules[idx])
	}

	// Block until all goroutine finished execution.
	wg.Wait()
}

// Shutdown cancels the root context and closes the event bus. Run returns
// once every module observed the cancellation.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("starting graceful shutdown process")
	e.cancel()
	if e.EventBus != nil {
		if err := e.EventBus.Close(); err != nil {
			Logger.Log.WithError(err).Warn("fail to close event bus")
		}
	}
}
