package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/infinitescroll/image-store/internal/health"
	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/metrics"
	"go.uber.org/zap"

	mockStorage "github.com/infinitescroll/image-store/internal/storage/mock"
)

func TestRouter(t *testing.T) {
	log := logger.New(zap.FatalLevel)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checker := &health.Checker{Ctx: ctx, Storage: &mockStorage.Provider{}, Log: log}
	checker.Run()

	ts := httptest.NewServer(metrics.Router(checker))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), "go_goroutines") {
		t.Errorf("wrong metrics response %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusInternalServerError {
		t.Errorf("wrong health status code %d", res.StatusCode)
	}
}
