package logging

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.SugaredLogger to the Logger interface, for
// callers that already run a zap-based logging pipeline (SPEC_FULL.md
// §4.6). It is a thin Sprintf-style wrapper: Errorf/Warnf/Infof/Debugf map
// directly onto the matching Sugared methods, while Fatalf logs at Error
// level and then invokes the configured FatalHandler instead of zap's own os.Exit
// behavior, to keep Fatalf's contract uniform across Logger
// implementations.
type ZapLogger struct {
	log          *zap.SugaredLogger
	fatalHandler atomic.Pointer[FatalHandler]
}

// NewZapLogger wraps log, naming it "prbdb" so namespace prefixes written
// with the NS* constants compose cleanly with zap's own fields.
func NewZapLogger(log *zap.Logger) *ZapLogger {
	return &ZapLogger{log: log.Named("prbdb").Sugar()}
}

// SetFatalHandler sets the handler called when Fatalf is invoked.
func (l *ZapLogger) SetFatalHandler(h FatalHandler) {
	l.fatalHandler.Store(&h)
}

func (l *ZapLogger) Errorf(format string, args ...any) { l.log.Errorf(format, args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.log.Warnf(format, args...) }
func (l *ZapLogger) Infof(format string, args ...any)  { l.log.Infof(format, args...) }
func (l *ZapLogger) Debugf(format string, args ...any) { l.log.Debugf(format, args...) }

func (l *ZapLogger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log.Error(msg)
	if h := l.fatalHandler.Load(); h != nil {
		(*h)(msg)
	}
}
