package logger

import (
	"log"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()

	// InfoLogger, WarnLogger va ErrorLogger eski log.Printf uslubidagi kod uchun.
	// Init chaqirilmaguncha hech narsa yozmaydi.
	InfoLogger  = zap.NewStdLog(base)
	WarnLogger  = zap.NewStdLog(base)
	ErrorLogger = zap.NewStdLog(base)
)

// Init LOG_LEVEL muhit o'zgaruvchisi bo'yicha loggerni ishga tushiradi
func Init() {
	InitLevel(os.Getenv("LOG_LEVEL"))
}

// InitLevel berilgan daraja bilan loggerni qayta quradi (debug|info|warn|error)
func InitLevel(level string) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		log.Printf("[logger] zap ishga tushmadi, standart log ishlatiladi: %v", err)
		l = zap.NewExample()
	}
	Set(l)
}

// Set tayyor zap loggerni o'rnatadi (testlarda zaptest/observer bilan)
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()

	base = l
	InfoLogger = stdLogAt(l, zapcore.InfoLevel)
	WarnLogger = stdLogAt(l, zapcore.WarnLevel)
	ErrorLogger = stdLogAt(l, zapcore.ErrorLevel)

	// Paketlardagi log.Printf("[tag] ...") chaqiruvlari ham zap orqali o'tadi.
	zap.RedirectStdLog(l)
}

// L strukturali log uchun joriy zap logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Named komponent nomi bilan child logger
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync buferlangan yozuvlarni chiqaradi
func Sync() {
	_ = L().Sync()
}

func stdLogAt(l *zap.Logger, level zapcore.Level) *log.Logger {
	std, err := zap.NewStdLogAt(l, level)
	if err != nil {
		return zap.NewStdLog(l)
	}
	return std
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
