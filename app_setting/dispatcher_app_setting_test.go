package app_setting

import (
	"testing"
	"time"

	"github.com/Luismorlan/feedcast/dispatcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCheckedInSetting(t *testing.T) {
	s, err := ParseDispatcherAppSetting("dispatcher_app_setting.yaml")
	require.NoError(t, err)
	assert.Equal(t, dispatcher.Config{
		LocalDomain:              "feedcast.example",
		PageSize:                 1000,
		ActiveWindow:             14 * 24 * time.Hour,
		TopicSubscriptionEnabled: true,
		STLEnabled:               true,
		LTLEnabled:               true,
	}, s.ToConfig())
	assert.Equal(t, 800, s.FEED_MAX_ITEMS)
	assert.Equal(t, time.Hour, s.PayloadCacheTTL())
}

func TestDefaults(t *testing.T) {
	s, err := UnmarshalDispatcherAppSetting([]byte(`
DISTRIBUTION_QUEUE_NAME: d
FEED_INSERTION_QUEUE_NAME: f
STL_ENABLED: false
QUEUE_READ_TIMEOUT_SECOND: 60
`))
	require.NoError(t, err)
	cfg := s.ToConfig()
	assert.Equal(t, 1000, cfg.PageSize)
	assert.Equal(t, dispatcher.DefaultActiveWindow, cfg.ActiveWindow)
	assert.True(t, cfg.TopicSubscriptionEnabled)
	assert.False(t, cfg.STLEnabled)
	assert.True(t, cfg.LTLEnabled)
	assert.False(t, cfg.RuleFeedsEnabled)
	assert.Equal(t, 800, s.FEED_MAX_ITEMS)
	assert.Equal(t, int64(20), s.QUEUE_READ_TIMEOUT_SECOND)
}

func TestRejectsBadSettings(t *testing.T) {
	_, err := UnmarshalDispatcherAppSetting([]byte("DISTRIBUTION_QUEUE_NAME: d\n"))
	assert.Error(t, err)

	_, err = UnmarshalDispatcherAppSetting([]byte("DISTRIBUTION_QUEUE_NAME: d\nFEED_INSERTION_QUEUE_NAME: f\nUNKNOWN: 1\n"))
	assert.Error(t, err)

	_, err = ParseDispatcherAppSetting("missing.yaml")
	assert.Error(t, err)
}
