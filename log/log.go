package log

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var (
	log     zerolog.Logger
	logFile *os.File // file output of log, closed when replaced
	logMu   sync.RWMutex
)

func init() {
	// $LOG_LEVEL is honoured before flags are parsed, so early messages
	// can be made visible too.
	if err := Init(cmp.Or(os.Getenv("LOG_LEVEL"), LogLevelError), "stderr"); err != nil {
		panic(err)
	}
}

// Logger provides access to the global logger (zerolog).
func Logger() *zerolog.Logger {
	logger := getLogger()
	return &logger
}

func getLogger() zerolog.Logger {
	logMu.RLock()
	logger := log
	logMu.RUnlock()
	return logger
}

func setLogger(logger zerolog.Logger, f *os.File) {
	logMu.Lock()
	prev := logFile
	log, logFile = logger, f
	logMu.Unlock()
	if prev != nil && prev != f {
		prev.Close()
	}
}

// Init replaces the global logger. Output is "stdout", "stderr" or a file
// path, opened in append mode.
func Init(level, output string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	var (
		out     io.Writer
		f       *os.File
		noColor bool
	)
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr", "":
		out = os.Stderr
	default:
		f, err = os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("cannot create log output: %w", err)
		}
		out = f
		noColor = true
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: RFC3339Milli,
		NoColor:    noColor,
	}).With().Timestamp().Logger()

	// Skip the frames of this wrapper so the caller is reported.
	logger = logger.With().Caller().Logger()
	zerolog.CallerSkipFrameCount = 3
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
	}

	setLogger(logger.Level(lvl), f)
	return nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch level {
	case LogLevelDebug:
		return zerolog.DebugLevel, nil
	case LogLevelInfo:
		return zerolog.InfoLevel, nil
	case LogLevelWarn:
		return zerolog.WarnLevel, nil
	case LogLevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

func currentLevel() string {
	switch getLogger().GetLevel() {
	case zerolog.DebugLevel:
		return LogLevelDebug
	case zerolog.InfoLevel:
		return LogLevelInfo
	case zerolog.WarnLevel:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

// Debugw sends a debug level log message with key-value pairs.
func Debugw(msg string, keyvalues ...any) {
	Logger().Debug().Fields(keyvalues).Msg(msg)
}

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	Logger().Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warning level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	Logger().Warn().Fields(keyvalues).Msg(msg)
}

// Errorw sends an error level log message with a special format for errors.
func Errorw(err error, msg string) {
	Logger().Error().Err(err).Msg(msg)
}
