package engine

import (
	"context"
	"time"

	Logger "github.com/Luismorlan/feedcast/utils/log"
)

const (
	GracefulRetryDelay = 3 * time.Second
)

// RunModuleWithGracefulRestart reruns module after a short delay whenever it
// exits with an error, until ctx is done.
func RunModuleWithGracefulRestart(ctx context.Context, module Module, retryDelay time.Duration) {
	for {
		err := module.RunModule(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		Logger.Log.WithError(err).Errorf(
			"module %s exited with error, retry in %s", module.Name(), retryDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

type Module interface {
	// RunModule contains the customized logic of the module. It takes in a
	// context object by which its lifecycle is managed. Return error if
	// encountered any error during execution.
	RunModule(ctx context.Context) error

	// Return name of the Module. Uniquely identifies the module instance. Note
	// that if there are multiple instances of the same module, each instance
	// should have a unique name instead of using the same name.
	Name() string
}
