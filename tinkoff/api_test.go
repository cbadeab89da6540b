package tinkoff

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testAPI(serverURL string) *API {
	credential := NewCredentialWithURL(serverURL+"/v2/", "1234567890123DEMO", "n6sd22449gugk8mb")
	return NewAPI(nil, credential)
}

func TestBuildQueryInjectsAuthFields(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Success": true, "ErrorCode": "0", "Status": "NEW"}`))
	}))
	defer server.Close()

	api := testAPI(server.URL)
	payload := NewPayload()
	payload.Set("Amount", int64(10000))
	payload.Set("OrderId", "201709")

	if _, err := buildQuery[InitResponse](context.Background(), api, pathInit, payload); err != nil {
		t.Fatalf("buildQuery() error: %v", err)
	}

	if received["TerminalKey"] != "1234567890123DEMO" {
		t.Errorf("TerminalKey on the wire = %v", received["TerminalKey"])
	}
	if _, ok := received["Password"]; ok {
		t.Error("the signing secret must never appear on the wire")
	}

	// The transmitted token must verify against the transmitted fields.
	signed := NewPayload()
	signed.Set("Amount", int64(10000))
	signed.Set("OrderId", "201709")
	signed.Set("TerminalKey", "1234567890123DEMO")
	want := api.signer.GenerateToken(signed)
	if received["Token"] != want {
		t.Errorf("Token on the wire = %v, want %s", received["Token"], want)
	}
}

func TestBuildQuerySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Success": true, "ErrorCode": "0", "Status": "NEW", "PaymentId": "13660", "Amount": 10000}`))
	}))
	defer server.Close()

	resp, err := buildQuery[InitResponse](context.Background(), testAPI(server.URL), pathInit, NewPayload())
	if err != nil {
		t.Fatalf("buildQuery() error: %v", err)
	}
	if resp.Status != StatusNew || resp.PaymentID.Int64() != 13660 {
		t.Errorf("unexpected result: %+v", resp)
	}
}

// A body that parses into the success shape but carries Success:false must
// surface as a gateway error, never as a success object.
func TestBuildQueryDiscriminantPrecedence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Success": false, "ErrorCode": "105", "Status": "REJECTED", "Message": "Terminal not found"}`))
	}))
	defer server.Close()

	_, err := buildQuery[GetStateResponse](context.Background(), testAPI(server.URL), pathGetState, NewPayload())

	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *GatewayError, got %T: %v", err, err)
	}
	if gerr.Code != 105 {
		t.Errorf("Code = %d, want 105", gerr.Code)
	}
	if gerr.Message != "Terminal not found" {
		t.Errorf("Message = %q", gerr.Message)
	}
}

func TestBuildQueryErrorDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Success": false, "ErrorCode": "9", "Message": "Invalid parameters", "Details": "Amount is missing"}`))
	}))
	defer server.Close()

	_, err := buildQuery[InitResponse](context.Background(), testAPI(server.URL), pathInit, NewPayload())

	var gerr *GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *GatewayError, got %T: %v", err, err)
	}
	if gerr.Code != 9 || gerr.Details != "Amount is missing" {
		t.Errorf("unexpected error: %+v", gerr)
	}
	if !strings.Contains(gerr.Error(), "Amount is missing") {
		t.Errorf("Error() should carry the details, got %q", gerr.Error())
	}
}

func TestBuildQueryMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>Bad Gateway</html>`))
	}))
	defer server.Close()

	_, err := buildQuery[InitResponse](context.Background(), testAPI(server.URL), pathInit, NewPayload())

	var ierr *InternalError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *InternalError, got %T: %v", err, err)
	}
	if ierr.Message == "" {
		t.Error("internal error should carry the parse diagnostic")
	}
	if !strings.Contains(ierr.Error(), "9999") {
		t.Errorf("Error() should carry the reserved code, got %q", ierr.Error())
	}
}

func TestBuildQueryUnparseableErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Success": false, "ErrorCode": "not-a-number", "Message": "odd"}`))
	}))
	defer server.Close()

	_, err := buildQuery[InitResponse](context.Background(), testAPI(server.URL), pathInit, NewPayload())

	var ierr *InternalError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *InternalError, got %T: %v", err, err)
	}
}

func TestBuildQueryTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := buildQuery[InitResponse](context.Background(), testAPI(server.URL), pathInit, NewPayload())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		t.Error("transport failures must not be reported as gateway errors")
	}
}

func TestNewAPIDefaultClient(t *testing.T) {
	api := NewAPI(nil, NewCredential("key", "secret"))
	if api.client == nil {
		t.Fatal("HTTP client should be initialized")
	}
	if api.client.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v, want %v", api.client.Timeout, defaultTimeout)
	}
}
