package gemini

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

	"github.com/google/uuid"

	"github.com/taskintel/taskintel/internal/common"
)

// Request/response shapes for the generateContent REST surface.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	// ResponseMIMEType asks the producer for machine-parseable output only.
	// A request, not a guarantee: the validator still runs on whatever comes back.
	ResponseMIMEType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// retryableError marks transient producer failures (transport, 429, 5xx).
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// GenerateJSON sends the compiled prompt to the model and returns the raw
// response text, unparsed. Transient failures are retried with exponential
// backoff up to MaxRetries; contract-level failures never originate here and
// are therefore never retried.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) ([]byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
	)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, common.ProducerUnavailableError("rate limiter wait", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			c.log.Warn("llm.generate.retry",
				"req_id", rid, "attempt", attempt, "backoff_ms", backoff.Milliseconds(), "error", lastErr,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, common.ProducerUnavailableError("canceled during backoff", ctx.Err())
			}
		}

		raw, err := c.doRequest(ctx, prompt, rid)
		if err == nil {
			c.log.Info("llm.generate.ok",
				"req_id", rid,
				"response_bytes", len(raw),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return raw, nil
		}

		lastErr = err
		if !isRetryable(err) {
			c.log.Error("llm.generate.failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, err
		}
	}

	c.log.Error("llm.generate.retries_exhausted",
		"req_id", rid, "error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil, common.ProducerUnavailableError("max retries exceeded", lastErr)
}

func (c *Client) doRequest(ctx context.Context, prompt, rid string) ([]byte, error) {
	body := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/models/" + c.cfg.Model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("gemini http error: %w", err)}
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("llm.generate.response_body_close_error", "req_id", rid, "error", cerr)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{err: fmt.Errorf("rate limited (429)")}
	case resp.StatusCode >= 500:
		return nil, &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErrorMessage(raw))}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, common.ConfigurationError(fmt.Sprintf("gemini API key rejected (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, common.ProducerUnavailableError(
			fmt.Sprintf("gemini error (%d): %s", resp.StatusCode, apiErrorMessage(raw)), nil)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, common.ProducerUnavailableError("decode gemini response", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, common.ProducerUnavailableError("empty response from producer", nil)
	}

	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return []byte(strings.TrimSpace(b.String())), nil
}

func apiErrorMessage(raw []byte) string {
	var ae apiError
	if err := json.Unmarshal(raw, &ae); err == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	return string(raw)
}
