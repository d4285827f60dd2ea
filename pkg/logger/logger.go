// Package logx configures the global zerolog logger for the assistant.
package logx

import (
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const envPrefix = "LOG"

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Service      string `split_words:"true" default:"restaurant-assistant"`

	// Output defaults to stdout.
	Output io.Writer `ignored:"true"`
}

var DefaultConfig = Config{Service: "restaurant-assistant"}

func Init(opts ...Config) {
	conf := DefaultConfig
	if len(opts) > 0 {
		conf = opts[0]
	}
	out := conf.Output
	if out == nil {
		out = os.Stdout
	}
	if conf.PrettyFormat {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if conf.Service != "" {
		ctx = ctx.Str("service", conf.Service)
	}
	log.Logger = ctx.Caller().Stack().Logger()
}

// InitFromEnv reads LOG_DEBUG, LOG_PRETTY_FORMAT and LOG_SERVICE. Values that
// do not parse leave the defaults in place and are reported as a warning.
func InitFromEnv() {
	var conf Config
	if err := envconfig.Process(envPrefix, &conf); err != nil {
		Init()
		log.Warn().Err(err).Msg("invalid LOG_* settings, using defaults")
		return
	}
	Init(conf)
}
