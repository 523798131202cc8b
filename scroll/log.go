package scroll

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// newLogger returns the engine's default logger, named the way every
// subsystem-scoped hclog logger in this module is named: package dot
// concern.
func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "scroll.engine",
		Level:  hclog.Warn,
		Output: os.Stderr,
	})
}
