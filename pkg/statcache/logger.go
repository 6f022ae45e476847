package statcache

import (
	"fmt"
	"strings"

	"github.com/marmos91/dittocifs/internal/logger"
)

// badgerLogger routes BadgerDB's printf-style logging into the structured
// logger. Informational chatter is demoted to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(trim(format, args), logger.Source("badger"))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(trim(format, args), logger.Source("badger"))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debug(trim(format, args), logger.Source("badger"))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(trim(format, args), logger.Source("badger"))
}

func trim(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
