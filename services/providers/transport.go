package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// maxErrorBody bounds how much of an upstream error body is kept in a
// ProviderError.
const maxErrorBody = 2048

// PostJSON marshals payload, posts it to endpoint and decodes a 2xx body into
// reply. Every failure is returned as a *ProviderError for provider. Transport
// errors never carry the request URL.
func PostJSON(ctx context.Context, client *http.Client, provider, endpoint string, headers map[string]string, payload interface{}, reply interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return NewProviderError(provider, CodeMarshal, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return NewProviderError(provider, CodeRequest, "failed to create request", 0, stripURL(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return NewProviderError(provider, CodeHTTP, "HTTP request failed", 0, stripURL(err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return NewProviderError(provider, CodeRead, "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return NewProviderError(provider, CodeUpstreamStatus, truncate(strings.TrimSpace(string(respBody))), httpResp.StatusCode, nil)
	}

	if err := json.Unmarshal(respBody, reply); err != nil {
		return NewProviderError(provider, CodeUnmarshal, "failed to unmarshal response", httpResp.StatusCode, err)
	}
	return nil
}

// ExtractText returns the reply text or an EMPTY_RESPONSE error when the
// provider answered without any text.
func ExtractText(provider string, reply Reply) (string, error) {
	text := strings.TrimSpace(reply.Text())
	if text == "" {
		return "", NewProviderError(provider, CodeEmptyResponse, "response contained no text", 0, nil)
	}
	return text, nil
}

// stripURL drops the *url.Error wrapper, whose message repeats the full URL.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// truncate cuts s to at most maxErrorBody bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
