package app_setting

import (
	"os"
	"time"

	"github.com/Luismorlan/feedcast/dispatcher"
	"github.com/Luismorlan/feedcast/feed"
	"github.com/Luismorlan/feedcast/queue"
	"github.com/Luismorlan/feedcast/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultPayloadCacheTTLSecond = 3600
	DefaultActiveDurationDays    = 14
)

// This is the dispatcher setting shared by the publisher and the feed inserter.
type DispatcherAppSetting struct {
	// Domain local accounts are known under, matched against antenna domains.
	LOCAL_DOMAIN string `yaml:"LOCAL_DOMAIN"`
	// Rows read per store page.
	PAGE_SIZE int `yaml:"PAGE_SIZE"`
	// Followers and antenna owners inactive for longer receive nothing.
	ACTIVE_DURATION_DAYS int `yaml:"ACTIVE_DURATION_DAYS"`
	// Unset switches default to true.
	TOPIC_SUBSCRIPTION_ENABLED *bool `yaml:"TOPIC_SUBSCRIPTION_ENABLED"`
	STL_ENABLED                *bool `yaml:"STL_ENABLED"`
	LTL_ENABLED                *bool `yaml:"LTL_ENABLED"`
	RULE_FEEDS_ENABLED         bool  `yaml:"RULE_FEEDS_ENABLED"`
	// Feeds are trimmed to this many newest statuses.
	FEED_MAX_ITEMS           int   `yaml:"FEED_MAX_ITEMS"`
	PAYLOAD_CACHE_TTL_SECOND int64 `yaml:"PAYLOAD_CACHE_TTL_SECOND"`

	DISTRIBUTION_QUEUE_NAME   string `yaml:"DISTRIBUTION_QUEUE_NAME"`
	FEED_INSERTION_QUEUE_NAME string `yaml:"FEED_INSERTION_QUEUE_NAME"`
	// Long polling wait of SQS reads, at most 20.
	QUEUE_READ_TIMEOUT_SECOND int64 `yaml:"QUEUE_READ_TIMEOUT_SECOND"`
}

func ParseDispatcherAppSetting(path string) (DispatcherAppSetting, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return DispatcherAppSetting{}, errors.Wrapf(err, "read app setting %s", path)
	}
	return UnmarshalDispatcherAppSetting(yamlFile)
}

func UnmarshalDispatcherAppSetting(b []byte) (DispatcherAppSetting, error) {
	s := DispatcherAppSetting{}
	if err := yaml.UnmarshalStrict(b, &s); err != nil {
		return s, errors.Wrap(err, "unmarshal app setting")
	}
	s.applyDefaults()
	if s.DISTRIBUTION_QUEUE_NAME == "" || s.FEED_INSERTION_QUEUE_NAME == "" {
		return s, errors.New("app setting needs DISTRIBUTION_QUEUE_NAME and FEED_INSERTION_QUEUE_NAME")
	}
	return s, nil
}

func (s *DispatcherAppSetting) applyDefaults() {
	if s.PAGE_SIZE <= 0 {
		s.PAGE_SIZE = store.DefaultPageSize
	}
	if s.ACTIVE_DURATION_DAYS <= 0 {
		s.ACTIVE_DURATION_DAYS = DefaultActiveDurationDays
	}
	if s.FEED_MAX_ITEMS <= 0 {
		s.FEED_MAX_ITEMS = feed.DefaultMaxItems
	}
	if s.PAYLOAD_CACHE_TTL_SECOND <= 0 {
		s.PAYLOAD_CACHE_TTL_SECOND = DefaultPayloadCacheTTLSecond
	}
	if s.QUEUE_READ_TIMEOUT_SECOND <= 0 || s.QUEUE_READ_TIMEOUT_SECOND > queue.MaxReadTimeoutSec {
		s.QUEUE_READ_TIMEOUT_SECOND = queue.MaxReadTimeoutSec
	}
}

func enabled(b *bool) bool {
	return b == nil || *b
}

// ToConfig builds the dispatcher config.
func (s DispatcherAppSetting) ToConfig() dispatcher.Config {
	return dispatcher.Config{
		LocalDomain:              s.LOCAL_DOMAIN,
		PageSize:                 s.PAGE_SIZE,
		ActiveWindow:             time.Duration(s.ACTIVE_DURATION_DAYS) * 24 * time.Hour,
		TopicSubscriptionEnabled: enabled(s.TOPIC_SUBSCRIPTION_ENABLED),
		STLEnabled:               enabled(s.STL_ENABLED),
		LTLEnabled:               enabled(s.LTL_ENABLED),
		RuleFeedsEnabled:         s.RULE_FEEDS_ENABLED,
	}
}

func (s DispatcherAppSetting) PayloadCacheTTL() time.Duration {
	return time.Duration(s.PAYLOAD_CACHE_TTL_SECOND) * time.Second
}
