package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

// apiClient talks to the tailoring server. The server never retries provider
// calls, so whole-request retries live here, on the caller side.
type apiClient struct {
	baseURL string
	hc      *http.Client
	retries uint64
}

func newAPIClient(baseURL string, timeout time.Duration, retries uint64) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		retries: retries,
	}
}

type scoreRequest struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"jobDescription"`
}

type rewriteRequest struct {
	Resume         string                 `json:"resume"`
	JobDescription string                 `json:"jobDescription"`
	Analysis       *domain.AnalysisResult `json:"analysis,omitempty"`
	SelectedGaps   []string               `json:"selectedGaps,omitempty"`
}

func (c *apiClient) Score(ctx context.Context, resume, jd string) (domain.AnalysisResult, error) {
	var out domain.AnalysisResult
	err := c.postJSON(ctx, "/v1/score", scoreRequest{Resume: resume, JobDescription: jd}, &out)
	return out, err
}

func (c *apiClient) Rewrite(ctx context.Context, req rewriteRequest) (domain.RewriteResult, error) {
	var out domain.RewriteResult
	err := c.postJSON(ctx, "/v1/rewrite", req, &out)
	return out, err
}

// postJSON posts body and decodes the response, retrying the whole request
// with exponential backoff on transport failures and 5xx responses. 4xx
// responses fail immediately.
func (c *apiClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", path, err)
		}
		defer func() { _ = resp.Body.Close() }()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%s: server returned %d: %s", path, resp.StatusCode, apiMessage(raw))
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("%s: %s", path, apiMessage(raw)))
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	return backoff.Retry(op, bo)
}

func apiMessage(raw []byte) string {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Code != "" {
		return env.Error.Code + ": " + env.Error.Message
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}
