package utils

import (
	"os"

	"github.com/DataDog/datadog-go/statsd"
	Logger "github.com/Luismorlan/feedcast/utils/log"
)

const defaultDogStatsdAddr = "127.0.0.1:8125"

// NewDogStatsdClient connects to the local datadog agent. When the agent is
// unreachable a no-op client is returned so that metrics never block dispatch.
func NewDogStatsdClient() statsd.ClientInterface {
	addr := os.Getenv("DD_AGENT_ADDR")
	if addr == "" {
		addr = defaultDogStatsdAddr
	}
	client, err := statsd.New(addr, statsd.WithNamespace("feedcast."))
	if err != nil {
		Logger.Log.WithError(err).Warn("fail to create dogstatsd client, metrics disabled")
		return &statsd.NoOpClient{}
	}
	return client
}
