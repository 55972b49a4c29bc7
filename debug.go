package adf4351

import (
	"context"

	"log/slog"
)

// levelTrace logs raw bus transactions. One step more verbose than debug.
const levelTrace = slog.LevelDebug - 1

func (d *Device) logerr(msg string, attrs ...slog.Attr) {
	d.logattrs(slog.LevelError, msg, attrs...)
}

func (d *Device) info(msg string, attrs ...slog.Attr) {
	d.logattrs(slog.LevelInfo, msg, attrs...)
}

func (d *Device) debug(msg string, attrs ...slog.Attr) {
	d.logattrs(slog.LevelDebug, msg, attrs...)
}

func (d *Device) trace(msg string, attrs ...slog.Attr) {
	d.logattrs(levelTrace, msg, attrs...)
}

func (d *Device) logenabled(level slog.Level) bool {
	return d.logger != nil && d.logger.Handler().Enabled(context.Background(), level)
}

func (d *Device) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if !d.logenabled(level) {
		return
	}
	d.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
