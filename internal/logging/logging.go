// Package logging builds the console logger used by the command line tool.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// ErrUnknownLevel is returned for a level other than none, normal or debug.
var ErrUnknownLevel = errors.New("unknown log level")

// Levels accepted by New.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// New returns a console logger writing to w at the given level: "none"
// discards everything, "normal" starts at info, "debug" at debug. Levels
// are colored and timestamps dropped when w is a terminal.
func New(level string, w io.Writer) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch strings.ToLower(level) {
	case LevelNone:
		return zap.NewNop(), nil
	case LevelNormal, "":
		lvl = zapcore.InfoLevel
	case LevelDebug:
		lvl = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(w) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(newEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core), nil
}

// EnableColorOutput reports whether w is a terminal.
func EnableColorOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- descriptors fit in int
}

// consoleEnc prints errors by message only: aggregated rewrite failures
// would otherwise add errorVerbose and errorCauses fields to every line.
type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok && e != nil {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
