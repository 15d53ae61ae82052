package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Logger writes leveled, colour-prefixed lines for the API server and the heatmap client.
type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	level       LogLevel
	mutex       sync.Mutex
}

// LogLevel defines the logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	ERROR
)

// GlobalLogger is usable before InitLogger runs; InitLogger replaces it once.
var GlobalLogger = New(os.Stdout, INFO)
var once sync.Once

// ParseLevel maps a config string to a LogLevel, defaulting to INFO.
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// New builds a standalone logger.
func New(output io.Writer, level LogLevel) *Logger {
	if output == nil {
		output = os.Stdout
	}
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		infoLogger:  log.New(output, color.GreenString("INFO: "), flags),
		errorLogger: log.New(output, color.RedString("ERROR: "), flags),
		debugLogger: log.New(output, color.BlueString("DEBUG: "), flags),
		level:       level,
	}
}

// InitLogger configures the global logger with the given output and level name.
func InitLogger(output io.Writer, level string) {
	once.Do(func() {
		GlobalLogger = New(output, ParseLevel(level))
	})
}

func (l *Logger) Println(v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.level <= INFO {
		l.infoLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.level <= INFO {
		l.infoLogger.Printf(format, v...)
	}
}

func (l *Logger) Error(v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.level <= ERROR {
		l.errorLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.level <= ERROR {
		l.errorLogger.Printf(format, v...)
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.level <= DEBUG {
		l.debugLogger.Printf(format, v...)
	}
}

// Fatalf logs at ERROR and exits the process.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.mutex.Lock()
	l.errorLogger.Printf(format, v...)
	l.mutex.Unlock()
	os.Exit(1)
}
