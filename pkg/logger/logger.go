package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger логгер приложения поверх zap
// Сохраняет printf-стиль (Info/Warn/Error с форматом), которым пользуются все слои сервиса
type Logger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// New создает логгер
// Если filePath пустой - пишет в stdout в консольном формате, иначе в файл в JSON формате
func New(filePath string, level string) (*Logger, error) {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var (
		encoder zapcore.Encoder
		sink    zapcore.WriteSyncer
		file    *os.File
	)

	if filePath == "" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
		sink = zapcore.Lock(os.Stdout)
	} else {
		file, err = os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: failed to open log file %s: %w", filePath, err)
		}
		encoder = zapcore.NewJSONEncoder(encoderCfg)
		// Дублируем в stdout, чтобы логи были видны в контейнере
		sink = zapcore.NewMultiWriteSyncer(zapcore.AddSync(file), zapcore.Lock(os.Stdout))
	}

	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(zapLevel))
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{
		sugar: base.Sugar(),
		file:  file,
	}, nil
}

// NewNop возвращает логгер, который ничего не пишет (для тестов)
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Debug пишет отладочное сообщение
func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Info пишет информационное сообщение
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn пишет предупреждение
func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error пишет ошибку
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Fatal пишет ошибку и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// Close сбрасывает буферы и закрывает файл логов
func (l *Logger) Close() {
	_ = l.sugar.Sync()
	if l.file != nil {
		_ = l.file.Close()
	}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logger: unknown level %q", level)
	}
}
