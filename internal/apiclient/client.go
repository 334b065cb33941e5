// Package apiclient — HTTP-клиент CRM API для фоновых джоб и утилит.
// Повторяет транспортные ошибки ограниченное число раз и отличает
// бизнес-ошибки операции от недоступности сервиса.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	retryBaseDelay  = 500 * time.Millisecond
)

// OperationError — операция дошла до сервера, но вернула бизнес-ошибки.
// Повторять такой запрос бессмысленно.
type OperationError struct {
	Operation string
	Errors    []string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s failed: %s", e.Operation, strings.Join(e.Errors, "; "))
}

// Client вызывает document-эндпоинт CRM API.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
	logger   *log.Entry
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient заменяет транспорт.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAttempts задаёт число попыток для транспортных ошибок.
func WithAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New конструирует клиент для baseURL вида http://localhost:8000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		logger:   log.WithField("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestEnvelope struct {
	Operation string `json:"operation"`
	Variables any    `json:"variables,omitempty"`
}

type responseEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

// Do выполняет операцию и декодирует data в out (out может быть nil).
// Транспортные ошибки повторяются; бизнес-ошибки возвращаются как
// *OperationError без повторов.
func (c *Client) Do(ctx context.Context, operation string, variables any, out any) error {
	body, err := json.Marshal(requestEnvelope{Operation: operation, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			c.logger.WithFields(log.Fields{
				"operation": operation,
				"attempt":   attempt,
			}).Debug("retrying request")
		}

		err := c.doOnce(ctx, operation, body, out)
		if err == nil {
			return nil
		}
		var opErr *OperationError
		if errors.As(err, &opErr) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("operation %s: %d attempts failed: %w", operation, c.attempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, operation string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return &OperationError{Operation: operation, Errors: envelope.Errors}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
