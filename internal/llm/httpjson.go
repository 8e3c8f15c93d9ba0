package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned by the raw HTTP providers for non-200 responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// postJSON sends body as JSON to url and decodes a 200 response into out.
// onBody, if set, inspects the raw body before the status check so that
// providers with structured error envelopes can surface them.
func postJSON(ctx context.Context, client *http.Client, provider, url string, body, out any, onBody func([]byte) error) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", provider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", provider, err)
	}

	if onBody != nil {
		if err := onBody(respBody); err != nil {
			return err
		}
	}

	if httpResp.StatusCode != http.StatusOK {
		return &StatusError{Provider: provider, StatusCode: httpResp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", provider, err)
	}
	return nil
}
