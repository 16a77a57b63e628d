package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("status", "captured"),
		attribute.String("event_id", "evt_1"),
		attribute.String("email", "a@b.com"),
		attribute.String("outcome", "inserted"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "event_id" || attr.Key == "email" {
			t.Fatalf("unexpected label %s retained", attr.Key)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordWebhookEvent(ctx, "captured", "inserted")
	m.RecordWebhookRejected(ctx, "invalid_signature")
	m.RecordOrderCreated(ctx, "INR")
	m.RecordGatewayCall(ctx, "create_order", time.Millisecond, nil)
	m.RecordRateLimitDenied(ctx, "/create-order")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "payhook"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordWebhookEvent(context.Background(), "captured", "duplicate")
}

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetricsWithRegisterer(reg)
	if err != nil {
		t.Fatalf("new http metrics: %v", err)
	}

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/", http.MethodGet, "200")); got != 2 {
		t.Fatalf("expected 2 requests on /, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unmatched", http.MethodGet, "404")); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Fatalf("expected no in-flight requests, got %v", got)
	}
}
