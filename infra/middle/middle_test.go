package middle

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstgnz/tinkoffpay/infra/storage"
)

func TestResponseWriterCapture(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	rw.Write([]byte("body"))

	assert.Equal(t, http.StatusTeapot, rw.statusCode)
	assert.Equal(t, "body", rw.body.String())
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
}

func TestExtractOperationFromURL(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/init", "Init"},
		{"/confirm", "Confirm"},
		{"/cancel", "Cancel"},
		{"/state", "GetState"},
		{"/charge", "Charge"},
		{"/resend", "Resend"},
		{"/customers/abc", "Customer"},
		{"/cards/abc", "Card"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractOperationFromURL(tt.path), tt.path)
	}
}

func TestIsPaymentEndpoint(t *testing.T) {
	assert.True(t, isPaymentEndpoint("/init"))
	assert.True(t, isPaymentEndpoint("/customers/key/cards"))
	assert.False(t, isPaymentEndpoint("/health"))
	assert.False(t, isPaymentEndpoint("/logs"))
}

func TestExtractPaymentInfo(t *testing.T) {
	request := []byte(`{"order_id":"order-1","amount":10000}`)
	resp := []byte(`{"code":200,"success":true,"data":{"PaymentId":13660,"OrderId":"order-1","Status":"NEW","ErrorCode":"0"}}`)

	info := extractPaymentInfo(request, resp)

	assert.Equal(t, "order-1", info.OrderID)
	assert.Equal(t, "13660", info.PaymentID)
	assert.Equal(t, "NEW", info.Status)
	assert.Equal(t, "0", info.ErrorCode)
}

func TestExtractPaymentInfoStringPaymentID(t *testing.T) {
	resp := []byte(`{"data":{"PaymentId":"8742591","Status":"CONFIRMED"}}`)

	info := extractPaymentInfo(nil, resp)

	assert.Equal(t, "8742591", info.PaymentID)
	assert.Equal(t, "CONFIRMED", info.Status)
}

func TestPaymentLoggingMiddleware(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)
	defer store.Close()

	handler := PaymentLoggingMiddleware(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"PaymentId":"13660","OrderId":"order-1","Status":"NEW"}}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/init", strings.NewReader(`{"order_id":"order-1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))

	// The insert happens asynchronously
	var logs []storage.PaymentLog
	require.Eventually(t, func() bool {
		logs, err = store.List(10)
		return err == nil && len(logs) == 1
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, "Init", logs[0].Operation)
	assert.Equal(t, "order-1", logs[0].OrderID)
	assert.Equal(t, "13660", logs[0].PaymentID)
	assert.Equal(t, "NEW", logs[0].Status)
}

func TestPaymentLoggingMiddlewareSkipsOtherEndpoints(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)
	defer store.Close()

	handler := PaymentLoggingMiddleware(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, req.Header.Get("X-Request-ID"))

	logs, err := store.List(10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	handler := PanicRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/init", nil)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, req)
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestPanicRecoveryWithCustomHandler(t *testing.T) {
	var captured any
	handler := PanicRecoveryWithCustomHandler(func(w http.ResponseWriter, r *http.Request, err any) {
		captured = err
		w.WriteHeader(http.StatusServiceUnavailable)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("custom boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "custom boom", captured)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeadersMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRequestValidationMiddleware(t *testing.T) {
	handler := RequestValidationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/init", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/init", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("json accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/init", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("get passes without content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/logs", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	assert.Equal(t, "10.0.0.1", GetClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.3")
	assert.Equal(t, "10.0.0.3", GetClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:12345"
	assert.Equal(t, "192.168.1.5", GetClientIP(req))
}
