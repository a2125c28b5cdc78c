package utils

import (
	"github.com/Luismorlan/feedcast/utils/dotenv"
	"github.com/Luismorlan/feedcast/utils/flag"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

func ddEnv() string {
	if dotenv.IsProdEnv() {
		return "production"
	}
	return "development"
}

// StartTracer starts the Datadog tracer. Spans created before this call are
// no-ops, so tests never need it.
func StartTracer() {
	tracer.Start(
		tracer.WithService(flag.ServiceName),
		tracer.WithEnv(ddEnv()),
	)

	Logger.Log.WithFields(
		logrus.Fields{"env": ddEnv()},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}

// StartProfiler starts the Datadog profiler with CPU and heap profiles.
func StartProfiler() error {
	return profiler.Start(
		profiler.WithService(flag.ServiceName),
		profiler.WithEnv(ddEnv()),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
		),
	)
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
