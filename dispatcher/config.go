package dispatcher

import (
	"time"

	"github.com/Luismorlan/feedcast/store"
)

const (
	DefaultActiveWindow = 14 * 24 * time.Hour
)

// Config holds the server-wide switches dispatch reads. It is fixed for the
// lifetime of a Dispatcher.
type Config struct {
	// Domain local authors are matched under by antenna domain lists.
	LocalDomain string
	// Rows per store page.
	PageSize int
	// Followers, list owners and antenna owners must have been active within
	// this window to receive statuses.
	ActiveWindow time.Duration

	TopicSubscriptionEnabled bool
	STLEnabled               bool
	LTLEnabled               bool
	// RuleFeedsEnabled gives every antenna its own feed. Home and list
	// delivery then needs the antenna's InsertFeeds flag.
	RuleFeedsEnabled bool
}

func DefaultConfig() Config {
	return Config{
		PageSize:                 store.DefaultPageSize,
		ActiveWindow:             DefaultActiveWindow,
		TopicSubscriptionEnabled: true,
		STLEnabled:               true,
		LTLEnabled:               true,
	}
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = store.DefaultPageSize
	}
	if c.ActiveWindow <= 0 {
		c.ActiveWindow = DefaultActiveWindow
	}
	return c
}
