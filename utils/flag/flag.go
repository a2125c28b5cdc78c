/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic.
	Call flag.Parse() from main, never from package init, otherwise `go test`
	flags are rejected.
*/

package flag

import (
	"flag"
)

const (
	FeedPublisher = "feed_publisher"
	FeedInserter  = "feed_inserter"
)

var (
	IsDevelopment bool
	ServiceName   string
	// Path to the yaml dispatcher app setting.
	AppSettingPath string
	// Listen address of the admin router, empty disables it.
	AdminAddr string
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", FeedPublisher, "'feed_publisher' or 'feed_inserter'")
	flag.StringVar(&AppSettingPath, "config", "app_setting/dispatcher_app_setting.yaml", "path to dispatcher app setting")
	flag.StringVar(&AdminAddr, "admin_addr", ":8080", "listen address of the admin router")
}
