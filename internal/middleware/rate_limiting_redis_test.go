//go:build integration_test || all_tests

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/protocolengine/internal/telemetry/metrics"
	testingpkg "github.com/2beens/protocolengine/pkg/testing"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit_Redis(t *testing.T) {
	routerName := fmt.Sprintf("protocol-test-%d", time.Now().UnixNano())
	// redis_rate stores its counters under "rate:"
	_, rdb := testingpkg.GetRedisClientAndCtx(t, "rate:"+routerName)

	metricsManager := metrics.NewTestManager()
	handler := RateLimit(redis_rate.NewLimiter(rdb), routerName, 3, metricsManager)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/protocol", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, send("198.51.100.4:4100").Code)
	}
	rr := send("198.51.100.4:4100")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))

	assert.Equal(t, http.StatusOK, send("198.51.100.5:4100").Code)
}
