package config

import (
	"flag"
	"io"

	"github.com/mindfulplus/mindful/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. args
// are filtered with flagx.FilterArgs so flags of other components do not
// interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-tz", "-store", "-session-db", "-notify", "-log-level"})

	fs := flag.NewFlagSet("mindful", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA timezone for day boundaries")
	fs.StringVar(&cfg.DocstoreDSN, "store", cfg.DocstoreDSN, "document store DSN")
	fs.StringVar(&cfg.SessionDB, "session-db", cfg.SessionDB, "session cache path")
	fs.StringVar(&cfg.UploaderURL, "notify", cfg.UploaderURL, "notification service base URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
