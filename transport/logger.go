package transport

import "go.uber.org/zap"

// Logger is the seam transport code logs through, kept narrow so callers
// can plug in anything from a no-op to their own zap instance.
type Logger interface {
	Print(v ...any)
	Printf(format string, v ...any)
	Println(v ...any)
}

// NopLogger discards everything; the default for Session unless a
// Logger is configured.
type NopLogger struct{}

func (NopLogger) Print(_ ...any)            {}
func (NopLogger) Printf(_ string, _ ...any) {}
func (NopLogger) Println(_ ...any)          {}

// ZapLogger adapts a *zap.SugaredLogger to the driver's Logger seam.
type ZapLogger struct {
	S *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) ZapLogger {
	return ZapLogger{S: l.Sugar()}
}

func (z ZapLogger) Print(v ...any)                 { z.S.Info(v...) }
func (z ZapLogger) Printf(format string, v ...any) { z.S.Infof(format, v...) }
func (z ZapLogger) Println(v ...any)               { z.S.Info(v...) }
