package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crytic/contractops/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger is disabled until the CLI configures it. Each package derives its own sub-logger from it.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger writes every event to a colorized console stream and to any number of additional writers.
type Logger struct {
	// level is the minimum level emitted by both underlying loggers.
	level zerolog.Level

	// multiLogger fans events out to writers, either as JSON or as plain console text.
	multiLogger zerolog.Logger

	// consoleLogger renders events for a human on stderr. Stdout is reserved for operation results.
	consoleLogger zerolog.Logger

	// context holds the key-value pairs added by NewSubLogger so they survive writer changes.
	context []string

	writers []io.Writer
}

// LogFormat selects how a writer renders events.
type LogFormat string

const (
	// STRUCTURED renders events as JSON lines.
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED renders events as uncolored console text.
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo is attached to an event under the "info" key.
type StructuredLogInfo map[string]any

// NewLogger creates a Logger at the given level. Console output goes to stderr when consoleEnabled is set.
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	l := &Logger{
		level:         level,
		multiLogger:   zerolog.New(os.Stderr).Level(zerolog.Disabled),
		consoleLogger: zerolog.New(os.Stderr).Level(zerolog.Disabled),
		writers:       writers,
	}
	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: os.Stderr}, level)
		l.consoleLogger = zerolog.New(consoleWriter).Level(level)
	}
	l.rebuildMultiLogger()
	return l
}

// NewSubLogger returns a Logger that tags every event with key=value. Packages use key "module".
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	ctx := make([]string, 0, len(l.context)+2)
	ctx = append(ctx, l.context...)
	ctx = append(ctx, key, value)
	return &Logger{
		level:         l.level,
		multiLogger:   l.multiLogger.With().Str(key, value).Logger(),
		consoleLogger: l.consoleLogger.With().Str(key, value).Logger(),
		context:       ctx,
		writers:       l.writers,
	}
}

// AddWriter adds an output channel. Adding the same writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	for _, w := range l.writers {
		if w == writer {
			return
		}
	}
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}
	l.writers = append(l.writers, writer)
	l.rebuildMultiLogger()
}

// RemoveWriter removes an output channel previously added with AddWriter. Unknown writers are ignored.
func (l *Logger) RemoveWriter(writer io.Writer) {
	for i, w := range l.writers {
		if w == writer {
			l.writers = append(l.writers[:i], l.writers[i+1:]...)
			l.rebuildMultiLogger()
			return
		}
	}
}

// Level returns the current log level.
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel changes the level of both underlying loggers.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

func (l *Logger) rebuildMultiLogger() {
	if len(l.writers) == 0 {
		l.multiLogger = zerolog.New(io.Discard).Level(zerolog.Disabled)
		return
	}
	ctx := zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp()
	for i := 0; i+1 < len(l.context); i += 2 {
		ctx = ctx.Str(l.context[i], l.context[i+1])
	}
	l.multiLogger = ctx.Logger()
}

// Trace logs args at trace level. See buildMsgs for how args are interpreted.
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug logs args at debug level.
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info logs args at info level.
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn logs args at warn level.
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error logs args at error level.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic logs args at panic level and then panics.
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

func (l *Logger) log(level zerolog.Level, args ...any) {
	consoleMsg, multiMsg, err, info := buildMsgs(args...)

	consoleLog := l.consoleLogger.WithLevel(level)
	multiLog := l.multiLogger.WithLevel(level)

	withStack := level == zerolog.PanicLevel || l.level <= zerolog.DebugLevel
	chainError(consoleLog, multiLog, err, withStack)

	if info != nil {
		consoleLog.Any("info", info)
		multiLog.Any("info", info)
	}

	// The multi logger is sent last so that a panic still reaches every writer.
	defer func() {
		multiLog.Msg(multiMsg)
		if level == zerolog.PanicLevel {
			panic(multiMsg)
		}
	}()
	consoleLog.Msg(consoleMsg)
}

// buildMsgs splits args into a colorized console message, a plain message, an optional error and optional
// StructuredLogInfo. A ColorFunc argument changes the color of the arguments after it.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil, nil
	}

	colorCtx := colors.Reset
	consoleOutput := make([]string, 0, len(args))
	plainOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			colorCtx = t
		case StructuredLogInfo:
			info = t
		case error:
			err = t
		default:
			consoleOutput = append(consoleOutput, colorCtx(t))
			plainOutput = append(plainOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(consoleOutput, ""), strings.Join(plainOutput, ""), err, info
}

// chainError attaches err to both events, plus a stack trace when withStack is set.
func chainError(consoleLog *zerolog.Event, multiLog *zerolog.Event, err error, withStack bool) {
	consoleLog.Err(err)
	multiLog.Err(err)
	if withStack && err != nil {
		consoleLog.Stack()
		multiLog.Stack()
	}
}

// setupDefaultFormatting drops timestamps and replaces level names with colored glyphs.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	writer.FormatLevel = func(i any) string {
		s, _ := i.(string)
		parsed, err := zerolog.ParseLevel(s)
		if err != nil {
			return s
		}
		switch parsed {
		case zerolog.TraceLevel:
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return s
		}
	}

	// The module tag is noise on the console unless debugging.
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}
