package logging

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// gormWriter forwards gorm's printf-style output to zerolog at debug level.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	Debug().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// GormLogger returns a gorm logger that writes through zerolog.
// SQL statements are logged when debug is true; otherwise only errors.
func GormLogger(debug bool) logger.Interface {
	level := logger.Error
	if debug {
		level = logger.Info
	}
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
