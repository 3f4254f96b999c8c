// Package logger is the process wide zap logger. Until Initialize runs everything goes
// to a nop logger, so tests and library users stay quiet.
package logger

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log atomic.Pointer[zap.Logger]

func init() {
	log.Store(zap.NewNop())
}

type Configuration struct {
	LogFile   string `yaml:"file" envconfig:"FILE"`
	ErrorFile string `yaml:"error_file" envconfig:"ERROR_FILE"`
	Level     string `yaml:"level" envconfig:"LEVEL"`
	Console   bool   `yaml:"console" envconfig:"CONSOLE"`
}

// Initialize builds the tee of file, error file and console cores. An empty
// configuration keeps the nop logger.
func Initialize(configuration Configuration) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(configuration.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core

	if configuration.LogFile != "" {
		logFile, err := os.OpenFile(configuration.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(logFile),
			level,
		))
	}

	if configuration.ErrorFile != "" {
		errorFile, err := os.OpenFile(configuration.ErrorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open error log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(errorFile),
			zapcore.ErrorLevel,
		))
	}

	if configuration.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	if len(cores) == 0 {
		return nil
	}
	log.Store(zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)))
	return nil
}

// Set swaps the logger, tests use it with zaptest/observer loggers.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log.Store(l)
}

// L returns the current logger for components that keep their own reference.
// Callers skip one frame less than the package funcs, so undo the skip.
func L() *zap.Logger {
	return log.Load().WithOptions(zap.AddCallerSkip(-1))
}

func Sync() {
	_ = log.Load().Sync()
}

func Debug(message string, fields ...zap.Field) {
	log.Load().Debug(message, fields...)
}

func Info(message string, fields ...zap.Field) {
	log.Load().Info(message, fields...)
}

func Warn(message string, fields ...zap.Field) {
	log.Load().Warn(message, fields...)
}

func Error(message string, fields ...zap.Field) {
	log.Load().Error(message, fields...)
}

func Fatal(message string, fields ...zap.Field) {
	log.Load().Fatal(message, fields...)
}
