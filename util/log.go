package util
import (
	"io"
	"os"
	"context"
	"log/slog"
	"hermannm.dev/devlog"
)

/*
 * a leveled logger on top of slog. Mode is a bitmask of the levels to keep,
 * colored output goes through devlog, plain output uses slog's text format.
 */
const (
	Error = 1
	Warning = 2
	Info = 4
	Debug = 8

	YellowColor = "\033[33m"
	GreenColor = "\033[32m"
	ResetColor = "\033[0m"
)

type LoggerInfo struct {
	Filename	string		`yaml:"filename"`	// empty means stderr
	IsColored	bool		`yaml:"is_colored"`
	SaveTime	bool		`yaml:"save_time"`
	Mode		uint8		`yaml:"mode"`
}

type Logger struct {
	li		*LoggerInfo
	log		*slog.Logger
	out		io.Closer
}

func NewLogger( li *LoggerInfo ) (*Logger, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer
	if li.Filename != "" {
		f, err := os.OpenFile( li.Filename, os.O_APPEND | os.O_CREATE | os.O_WRONLY, 0600 )
		if err != nil {
			return nil, err
		}
		out, closer = f, f
	}
	return &Logger{
		li,
		slog.New( newHandler( li, out ) ),
		closer,
	}, nil
}

// NewWriterLogger logs into w, used by tests and embedded servers.
func NewWriterLogger( li *LoggerInfo, w io.Writer ) *Logger {
	return &Logger{ li, slog.New( newHandler( li, w ) ), nil }
}

func newHandler( li *LoggerInfo, w io.Writer ) slog.Handler {
	if li.IsColored {
		return devlog.NewHandler( w, &devlog.Options{
			Level: slog.LevelDebug,
		})
	}
	return slog.NewTextHandler( w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func( groups []string, a slog.Attr ) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 && !li.SaveTime {
				return slog.Attr{}
			}
			return a
		},
	})
}

func(l *Logger) Close() error {
	if l.out != nil {
		return l.out.Close()
	}
	return nil
}

func(l *Logger) enabled( mode uint8 ) bool {
	return l.li.Mode & mode == mode
}

func(l *Logger) LogError( err error, args ...any ) {
	if l.enabled( Error ) {
		l.log.Log( context.Background(), slog.LevelError, err.Error(), args... )
	}
}

func(l *Logger) LogWarning( warning string, args ...any ) {
	if l.enabled( Warning ) {
		l.log.Log( context.Background(), slog.LevelWarn, warning, args... )
	}
}

func(l *Logger) LogInfo( info string, args ...any ) {
	if l.enabled( Info ) {
		l.log.Log( context.Background(), slog.LevelInfo, info, args... )
	}
}

func(l *Logger) LogDebug( msg string, args ...any ) {
	if l.enabled( Debug ) {
		l.log.Log( context.Background(), slog.LevelDebug, msg, args... )
	}
}
