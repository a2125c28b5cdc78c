package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Luismorlan/feedcast/engine"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

// AdminModule serves a router for the lifetime of the engine.
type AdminModule struct {
	engine.Module

	Addr   string
	Router *gin.Engine
}

func (m *AdminModule) Name() string {
	return "admin_router"
}

func (m *AdminModule) RunModule(ctx context.Context) error {
	srv := &http.Server{Addr: m.Addr, Handler: m.Router}
	errs := make(chan error, 1)
	go func() {
		Logger.Log.Infof("admin router listens on %s", m.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "admin router stopped")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Logger.Log.WithError(err).Warn("admin router did not shut down cleanly")
	}
	return nil
}
