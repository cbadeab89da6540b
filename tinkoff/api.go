package tinkoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	terminalKeyField = "TerminalKey"
	defaultTimeout   = 30 * time.Second
)

// API executes signed queries against the merchant gateway. It owns no
// per-call state: the credential is immutable and every payload is
// call-local, so one API value serves any number of concurrent callers.
type API struct {
	client     *http.Client
	credential Credential
	signer     *Signer
}

// NewAPI creates a query executor over the given HTTP client. A nil client
// gets a default one with a 30 second timeout; all transport concerns
// (pooling, TLS, timeouts) belong to the supplied client.
func NewAPI(client *http.Client, credential Credential) *API {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &API{
		client:     client,
		credential: credential,
		signer:     NewSigner(credential),
	}
}

// buildQuery completes a payload with the terminal key and signature, posts
// it to baseURL+path and decodes the response into T.
//
// Decoding is two-stage: the body is first parsed optimistically as the
// expected success shape; if that parse fails, or it parses but the Success
// discriminant is false, the body is re-parsed as the generic error shape
// and surfaced as a *GatewayError. A body that parses as neither shape
// becomes an *InternalError. Exactly one of the typed result and an error
// is ever produced.
func buildQuery[T Response](ctx context.Context, api *API, path string, payload *Payload) (T, error) {
	var result T

	payload.Set(terminalKeyField, api.credential.TerminalKey())
	payload.Set(tokenField, api.signer.GenerateToken(payload))

	body, err := api.post(ctx, path, payload)
	if err != nil {
		return result, err
	}

	jsonErr := json.Unmarshal(body, &result)
	if jsonErr == nil && result.Successful() {
		return result, nil
	}

	var zero T
	return zero, decodeError(body, jsonErr)
}

// post serializes the payload as JSON and issues the HTTP round-trip,
// returning the raw response body. The body is read in full regardless of
// HTTP status; the gateway signals failure through the response shape, not
// the status code.
func (api *API) post(ctx context.Context, path string, payload *Payload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tinkoff: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.credential.APIURL()+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("tinkoff: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := api.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tinkoff: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tinkoff: failed to read response: %w", err)
	}

	return body, nil
}

// decodeError runs the fallback stage of response decoding: parse the body
// as the generic error shape, or give up with an internal error carrying
// the decoder diagnostic.
func decodeError(body []byte, parseErr error) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		if parseErr == nil {
			parseErr = err
		}
		return &InternalError{Message: parseErr.Error()}
	}

	code, err := strconv.Atoi(errResp.ErrorCode)
	if err != nil {
		return &InternalError{Message: fmt.Sprintf("unparseable error code %q", errResp.ErrorCode)}
	}

	return &GatewayError{
		Code:    code,
		Message: errResp.Message,
		Details: errResp.Details,
	}
}
