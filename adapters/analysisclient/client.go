package analysisclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/khoahotran/career-navigator/internal/application/service"
	"github.com/khoahotran/career-navigator/internal/config"
	"github.com/khoahotran/career-navigator/internal/domain/analysis"
	"github.com/khoahotran/career-navigator/pkg/logger"
	"github.com/khoahotran/career-navigator/pkg/metrics"
)

const (
	breakerName = "analysis-service"
	// maxResponseBytes bounds how much of the service's reply is read.
	maxResponseBytes = 4 << 20
)

// StatusError is returned when the Analysis Service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, e.Body)
}

type client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*analysis.RawAnalysis]
	logger     logger.Logger
}

func NewClient(cfg config.Config, log logger.Logger) service.ResumeAnalyzer {
	httpClient := &http.Client{
		Timeout:   cfg.Analysis.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return newClient(cfg.Analysis.URL, httpClient, cfg.Analysis.CircuitBreaker, log)
}

func newClient(url string, httpClient *http.Client, cbCfg config.CircuitBreakerConfig, log logger.Logger) *client {
	c := &client{
		url:        url,
		httpClient: httpClient,
		logger:     log,
	}
	if cbCfg.Enabled {
		c.breaker = newBreaker(cbCfg, log)
	}
	return c
}

func newBreaker(cfg config.CircuitBreakerConfig, log logger.Logger) *gobreaker.CircuitBreaker[*analysis.RawAnalysis] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[*analysis.RawAnalysis](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			open := 0.0
			if to == gobreaker.StateOpen {
				open = 1
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(open)
		},
	})
}

func (c *client) Analyze(ctx context.Context, resume []byte, filename, targetRole string) (*analysis.RawAnalysis, error) {
	call := func() (*analysis.RawAnalysis, error) {
		return c.do(ctx, resume, filename, targetRole)
	}
	if c.breaker == nil {
		return call()
	}
	return c.breaker.Execute(call)
}

func (c *client) do(ctx context.Context, resume []byte, filename, targetRole string) (*analysis.RawAnalysis, error) {
	body, contentType, err := buildForm(resume, filename, targetRole)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.AnalysisServiceDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to call analysis service: %w", err)
	}
	defer resp.Body.Close()
	metrics.AnalysisServiceDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(payload), 512)}
	}

	var raw analysis.RawAnalysis
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &raw, nil
}

func buildForm(resume []byte, filename, targetRole string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, filename))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create resume part: %w", err)
	}
	if _, err := part.Write(resume); err != nil {
		return nil, "", fmt.Errorf("failed to write resume part: %w", err)
	}
	if err := w.WriteField("role", targetRole); err != nil {
		return nil, "", fmt.Errorf("failed to write role field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
