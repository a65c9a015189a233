// Package classifier asks the external urgency model to score a new request.
// Every failure is converted into the fallback result so need creation can
// always proceed.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"samaajseva/internal/metrics"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	MethodModel    = "ml_model"
	MethodFallback = "fallback"

	maxResponseBytes = 1 << 20
)

type Request struct {
	State          string `json:"state"`
	PeopleAffected int    `json:"peopleAffected"`
	Domain         string `json:"domain"`
	ResourceType   string `json:"resourceType"`
	UrgencyReason  string `json:"urgencyReason"`
	Timeline       string `json:"timeline"`
}

type Result struct {
	Urgency     types.Urgency `json:"urgency"`
	Confidence  float64       `json:"confidence"`
	Method      string        `json:"predictionMethod"`
	BackendUsed bool          `json:"backendUsed"`
}

// Fallback is returned whenever the model cannot be reached or answers with
// something unusable.
func Fallback() Result {
	return Result{
		Urgency:    types.UrgencyManual,
		Confidence: 0,
		Method:     MethodFallback,
	}
}

type response struct {
	Status     string   `json:"status"`
	Urgency    string   `json:"urgency"`
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics
}

// New builds a client for the predict endpoint at url. A zero timeout
// leaves the call bounded only by the caller's context.
func New(url string, timeout time.Duration, logger logrus.FieldLogger, m *metrics.Metrics) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

func (c *Client) Classify(ctx context.Context, req Request) Result {
	started := time.Now()
	result, err := c.predict(ctx, req)
	c.metrics.ClassifierLatency.Observe(time.Since(started).Seconds())

	if err != nil {
		c.logger.WithError(err).WithField("url", c.url).Warn("urgency classification failed, using fallback")
		c.metrics.Classifications.WithLabelValues("fallback").Inc()
		return Fallback()
	}

	c.metrics.Classifications.WithLabelValues("classified").Inc()
	return result
}

func (c *Client) predict(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("failed to call classifier: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(data))
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if out.Status != "success" {
		return Result{}, fmt.Errorf("classifier reported %q: %s", out.Status, out.Error)
	}

	urgency := types.Urgency(strings.ToUpper(strings.TrimSpace(out.Urgency)))
	if !urgency.Scored() {
		return Result{}, fmt.Errorf("unrecognized urgency label %q", out.Urgency)
	}

	if out.Confidence == nil || *out.Confidence < 0 || *out.Confidence > 1 {
		return Result{}, fmt.Errorf("confidence missing or outside [0,1]")
	}

	return Result{
		Urgency:     urgency,
		Confidence:  *out.Confidence,
		Method:      MethodModel,
		BackendUsed: true,
	}, nil
}
