package logger_test

import (
	"testing"

	"github.com/infinitescroll/image-store/internal/logger"
	"go.uber.org/zap"
)

func TestNamed(t *testing.T) {
	log := logger.New(zap.FatalLevel)
	defer log.Sync()

	named := log.Named("storage")
	if named == nil || named.SugaredLogger == nil {
		t.Fatal("expected a logger")
	}

	if named == log {
		t.Error("expected a new logger instance")
	}
}

func TestHTTPErrorLog(t *testing.T) {
	log := logger.New(zap.FatalLevel)
	defer log.Sync()

	errorLog := logger.NewHTTPErrorLog(log)
	// Must not panic for either branch
	errorLog.Print("http: TLS handshake error from 127.0.0.1: EOF")
	errorLog.Print("http: superfluous response.WriteHeader call")
}
