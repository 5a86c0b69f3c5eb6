package logger

import (
	"github.com/sirupsen/logrus"
)

type Logger struct {
	flag  bool
	proto string
	entry *logrus.Entry
}

func New(flag bool, proto string) *Logger {
	if flag {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return &Logger{
		flag:  flag,
		proto: proto,
		entry: logrus.WithFields(logrus.Fields{
			"protocol": proto,
		}),
	}
}

func (l *Logger) DebugMode() bool {
	return l.flag
}

// With returns a logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		flag:  l.flag,
		proto: l.proto,
		entry: l.entry.WithField(key, value),
	}
}

func (l *Logger) Info(args ...interface{}) {
	if l.flag {
		l.entry.Info(args...)
	}
}

func (l *Logger) Debug(args ...interface{}) {
	if l.flag {
		l.entry.Debug(args...)
	}
}

// Warn is always emitted.
func (l *Logger) Warn(args ...interface{}) {
	l.entry.Warn(args...)
}

// Error is always emitted.
func (l *Logger) Error(args ...interface{}) {
	l.entry.Error(args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.flag {
		l.entry.Infof(format, args...)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.flag {
		l.entry.Debugf(format, args...)
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}
