package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// Logger is a tagged logger. In dev mode lines are mirrored into the debug
// console; when a log path is configured every line is also written to a
// JSON log file.
type Logger struct {
	view io.Writer
	tag  string
	dev  bool
	sink *sink
}

// sink is shared by every tagged logger created after InitLogger.
type sink struct {
	file    *zap.SugaredLogger
	logChan chan Message
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

var (
	logManager *Logger
	once       sync.Once
	mu         sync.Mutex
)

// InitLogger sets up the process wide sink. view may be nil, in which case dev
// output goes to the standard logger.
func InitLogger(dev bool, logPath string, view io.Writer) error {
	var err error
	once.Do(func() {
		l := &Logger{view: view, dev: dev}
		if logPath != "" {
			var s *sink
			s, err = newSink(logPath)
			if err != nil {
				return
			}
			l.sink = s
		}
		mu.Lock()
		logManager = l
		mu.Unlock()
	})
	return err
}

func newSink(logPath string) (*sink, error) {
	if err := os.MkdirAll(logPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(logPath, fmt.Sprintf("vox_log_%s.log", timestamp))

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{filePath}
	config.ErrorOutputPaths = []string{filePath}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true

	zl, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building file logger: %w", err)
	}

	s := &sink{
		file:    zl.Sugar(),
		logChan: make(chan Message, 100),
		done:    make(chan struct{}),
	}
	go s.processLogs()
	return s, nil
}

// NewLogger returns a logger for tag. Before InitLogger it returns a logger
// that drops everything, which keeps packages usable from tests.
func NewLogger(tag string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if logManager == nil {
		return &Logger{tag: tag}
	}
	return &Logger{
		view: logManager.view,
		tag:  tag,
		dev:  logManager.dev,
		sink: logManager.sink,
	}
}

func (s *sink) processLogs() {
	defer close(s.done)
	for msg := range s.logChan {
		fields := []interface{}{"tag", msg.Tag, "at", msg.Timestamp}
		switch msg.LogTypes {
		case Error, Fatal:
			s.file.Errorw(msg.Message, fields...)
		case Warn:
			s.file.Warnw(msg.Message, fields...)
		default:
			s.file.Infow(msg.Message, fields...)
		}
	}
	_ = s.file.Sync()
}

func (s *sink) send(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.logChan <- msg
}

func (s *sink) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.logChan)
	s.mu.Unlock()
	<-s.done
}

func (l *Logger) log(logTypes Types, v ...interface{}) {
	message := fmt.Sprint(v...)
	if l.dev {
		if l.view != nil {
			var format string
			switch logTypes {
			case Info:
				format = "[green]DEBUG (%s): %s[-]\n"
			case Error, Fatal:
				format = "[red]DEBUG (%s): %s[-]\n"
			case Warn:
				format = "[yellow]DEBUG (%s): %s[-]\n"
			}
			fmt.Fprintf(l.view, format, l.tag, message)
		} else {
			log.Printf("%s (%s): %s", logTypes.toString(), l.tag, message)
		}
	}

	if l.sink != nil {
		l.sink.send(Message{
			Timestamp: time.Now(),
			Tag:       l.tag,
			Message:   message,
			LogTypes:  logTypes,
		})
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, v...)
	Close()
	os.Exit(1)
}

// Close flushes the file sink. Later file output is dropped.
func Close() {
	mu.Lock()
	lm := logManager
	mu.Unlock()
	if lm != nil && lm.sink != nil {
		lm.sink.close()
	}
}

func (t Types) toString() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
