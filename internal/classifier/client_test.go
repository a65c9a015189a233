package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"samaajseva/internal/metrics"
	"samaajseva/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	c := New(url, timeout, logger, metrics.New())
	t.Cleanup(c.httpClient.CloseIdleConnections)
	return c
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

var sampleRequest = Request{
	State:          "Maharashtra",
	PeopleAffected: 120,
	Domain:         "Food",
	ResourceType:   "Food Kits",
	UrgencyReason:  "Flood",
	Timeline:       "Immediate",
}

func TestClassifySuccess(t *testing.T) {
	var got Request
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","urgency":"HIGH","confidence":0.9132,"timestamp":"2024-01-01T00:00:00"}`))
	})

	result := newTestClient(t, srv.URL, time.Second).Classify(context.Background(), sampleRequest)

	assert.Equal(t, sampleRequest, got)
	assert.Equal(t, types.UrgencyHigh, result.Urgency)
	assert.InDelta(t, 0.9132, result.Confidence, 1e-9)
	assert.Equal(t, MethodModel, result.Method)
	assert.True(t, result.BackendUsed)
}

func TestClassifyWireFormat(t *testing.T) {
	body, err := json.Marshal(sampleRequest)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"state": "Maharashtra",
		"peopleAffected": 120,
		"domain": "Food",
		"resourceType": "Food Kits",
		"urgencyReason": "Flood",
		"timeline": "Immediate"
	}`, string(body))
}

func TestClassifyFallback(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		handler http.HandlerFunc
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"ML Model not available"}`},
		{name: "reported error", status: http.StatusOK, body: `{"status":"error","error":"bad input"}`},
		{name: "malformed body", status: http.StatusOK, body: `<html>oops</html>`},
		{name: "missing status", status: http.StatusOK, body: `{"urgency":"LOW","confidence":0.5}`},
		{name: "unknown label", status: http.StatusOK, body: `{"status":"success","urgency":"UNKNOWN","confidence":0.5}`},
		{name: "missing urgency", status: http.StatusOK, body: `{"status":"success","confidence":0.5}`},
		{name: "missing confidence", status: http.StatusOK, body: `{"status":"success","urgency":"LOW"}`},
		{name: "confidence out of range", status: http.StatusOK, body: `{"status":"success","urgency":"LOW","confidence":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			result := newTestClient(t, srv.URL, time.Second).Classify(context.Background(), sampleRequest)
			assert.Equal(t, Fallback(), result)
		})
	}
}

func TestClassifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := newTestClient(t, url, time.Second).Classify(context.Background(), sampleRequest)
	assert.Equal(t, Fallback(), result)
}

// newStalledServer never answers until the test ends.
func newStalledServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	// runs before srv.Close so the handler can return
	t.Cleanup(func() { close(release) })
	return srv
}

func TestClassifyTimeout(t *testing.T) {
	srv := newStalledServer(t)

	started := time.Now()
	result := newTestClient(t, srv.URL, 50*time.Millisecond).Classify(context.Background(), sampleRequest)
	assert.Equal(t, Fallback(), result)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestClassifyCanceledContext(t *testing.T) {
	srv := newStalledServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestClient(t, srv.URL, 0).Classify(ctx, sampleRequest)
	assert.Equal(t, types.UrgencyManual, result.Urgency)
	assert.Zero(t, result.Confidence)
	assert.False(t, result.BackendUsed)
}

func TestClassifyLowercaseLabel(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","urgency":"medium","confidence":0.61}`))
	})

	result := newTestClient(t, srv.URL, time.Second).Classify(context.Background(), sampleRequest)
	assert.Equal(t, types.UrgencyMedium, result.Urgency)
}
