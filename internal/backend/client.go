package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"ChatGPT/internal/session"
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-3.5-turbo-0613"
)

// Client calls the OpenAI chat completions API. One Complete call is one POST.
type Client struct {
	Endpoint string
	Model    string

	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates a client for the fixed endpoint and model.
// Nil logger, tracer or meter fall back to no-op implementations.
func NewClient(apiKey string, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter("")
	}
	return &Client{
		Endpoint:   DefaultEndpoint,
		Model:      DefaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// Complete sends the whole conversation and returns the assistant reply
func (c *Client) Complete(ctx context.Context, messages []session.Message) (session.Message, error) {
	if len(messages) == 0 {
		return session.Message{}, ErrEmptyConversation
	}

	ctx, span := c.tracer.Start(ctx, "openai_api_call",
		trace.WithAttributes(
			attribute.String("llm.model", c.Model),
			attribute.Int("llm.messages", len(messages)),
		),
	)
	defer span.End()

	msg, err := c.complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("completion failed", "messages", len(messages), "error", err)
		return session.Message{}, err
	}
	return msg, nil
}

func (c *Client) complete(ctx context.Context, messages []session.Message) (session.Message, error) {
	start := time.Now()

	jsonData, err := json.Marshal(OpenAIRequest{
		Messages: messages,
		Model:    c.Model,
	})
	if err != nil {
		return session.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return session.Message{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Message{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Message{}, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	c.recordDuration(ctx, time.Since(start), resp.StatusCode)
	c.logger.Info("openai response", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return session.Message{}, fmt.Errorf("%w (%s)", ErrInvalidCredential, resp.Status)
	default:
		return session.Message{}, &RequestFailedError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	var apiResp OpenAIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return session.Message{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.recordUsage(ctx, apiResp.Usage)

	switch len(apiResp.Choices) {
	case 0:
		return session.Message{}, ErrEmptyOrAmbiguousResponse
	case 1:
	default:
		// n is never set on the request, so more than one choice is unexpected.
		c.logger.Warn("openai returned more than one choice, using the first", "choices", len(apiResp.Choices))
	}

	return apiResp.Choices[0].Message, nil
}

func (c *Client) recordDuration(ctx context.Context, d time.Duration, status int) {
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err != nil {
		return
	}
	histogram.Record(ctx, float64(d.Milliseconds()),
		metric.WithAttributes(attribute.Int("http.status_code", status)))
}

// recordUsage records token counters from the response usage object
func (c *Client) recordUsage(ctx context.Context, usage map[string]interface{}) {
	for key, value := range usage {
		n, ok := value.(float64)
		if !ok {
			continue
		}
		counter, err := c.meter.Int64Counter(
			fmt.Sprintf("llm.usage.%s", key),
			metric.WithDescription(fmt.Sprintf("LLM usage metric: %s", key)),
		)
		if err != nil {
			c.logger.Warn("failed to create counter", "key", key, "error", err)
			continue
		}
		counter.Add(ctx, int64(n))
	}
}
