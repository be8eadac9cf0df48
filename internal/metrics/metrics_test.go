package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollectorExposesRecordedMetrics(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("/post/events", 200)
	c.RecordRequest("/post/events", 400)
	c.ObserveStoreOp("write", 25*time.Millisecond)
	c.RecordSessionsPurged(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`dayplan_http_requests_total{route="/post/events",status="200"} 1`,
		`dayplan_http_requests_total{route="/post/events",status="400"} 1`,
		`dayplan_store_op_duration_seconds_count{op="write"} 1`,
		`dayplan_sessions_purged_total 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
