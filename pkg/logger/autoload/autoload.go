// Package autoload initialises the global logger from LOG_* variables when
// imported.
package autoload

import logx "github.com/tanpawarit/restaurant-assistant/pkg/logger"

func init() {
	logx.InitFromEnv()
}
