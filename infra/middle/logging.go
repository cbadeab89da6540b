package middle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/tinkoffpay/infra/logger"
	"github.com/mstgnz/tinkoffpay/infra/opensearch"
	"github.com/mstgnz/tinkoffpay/infra/storage"
)

// responseWriter wraps http.ResponseWriter to capture response data
type responseWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	startTime  time.Time
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
		startTime:      time.Now(),
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// PaymentLoggingMiddleware records every payment endpoint round-trip to the
// SQLite store and, when enabled, to OpenSearch.
func PaymentLoggingMiddleware(store *storage.SQLiteStore, osLogger *opensearch.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip logging for non-payment endpoints
			if !isPaymentEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Generate request ID
			requestID := uuid.New().String()
			r.Header.Set("X-Request-ID", requestID)

			operation := extractOperationFromURL(r.URL.Path)

			// Capture request body
			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(rw.startTime).Milliseconds()
			clientIP := GetClientIP(r)
			info := extractPaymentInfo(requestBody, rw.body.Bytes())

			entry := storage.PaymentLog{
				RequestID:  requestID,
				Operation:  operation,
				OrderID:    info.OrderID,
				PaymentID:  info.PaymentID,
				Status:     info.Status,
				ErrorCode:  info.ErrorCode,
				Message:    info.Message,
				DurationMs: duration,
			}

			logger.Info("payment request handled", logger.LogContext{
				Operation: operation,
				RequestID: requestID,
				Fields: map[string]any{
					"status_code": rw.statusCode,
					"duration_ms": duration,
					"order_id":    info.OrderID,
				},
			})

			// Persist asynchronously to avoid blocking the response
			go func() {
				if store != nil {
					if err := store.Insert(entry); err != nil {
						logger.Error("failed to persist payment log", err, logger.LogContext{
							Operation: operation,
							RequestID: requestID,
						})
					}
				}

				if osLogger != nil {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					gatewayLog := opensearch.GatewayLog{
						Timestamp:    rw.startTime.UTC(),
						Operation:    operation,
						RequestID:    requestID,
						OrderID:      info.OrderID,
						PaymentID:    info.PaymentID,
						Status:       info.Status,
						ErrorCode:    info.ErrorCode,
						Message:      info.Message,
						ClientIP:     clientIP,
						DurationMs:   duration,
						RequestBody:  string(requestBody),
						ResponseBody: rw.body.String(),
					}
					if err := osLogger.LogGatewayCall(ctx, gatewayLog); err != nil {
						logger.Warn("failed to ship gateway log to OpenSearch", logger.LogContext{
							Operation: operation,
							RequestID: requestID,
						})
					}
				}
			}()
		})
	}
}

// isPaymentEndpoint checks if the URL path is a payment-related endpoint
func isPaymentEndpoint(path string) bool {
	paymentPaths := []string{
		"/init",
		"/confirm",
		"/cancel",
		"/state",
		"/charge",
		"/resend",
		"/customers",
		"/cards",
	}

	for _, paymentPath := range paymentPaths {
		if strings.HasPrefix(path, paymentPath) {
			return true
		}
	}

	return false
}

// extractOperationFromURL maps a request path to a gateway operation name
func extractOperationFromURL(path string) string {
	segment := strings.Trim(path, "/")
	if idx := strings.Index(segment, "/"); idx != -1 {
		segment = segment[:idx]
	}

	switch segment {
	case "init":
		return "Init"
	case "confirm":
		return "Confirm"
	case "cancel":
		return "Cancel"
	case "state":
		return "GetState"
	case "charge":
		return "Charge"
	case "resend":
		return "Resend"
	case "customers":
		return "Customer"
	case "cards":
		return "Card"
	}

	return segment
}

// paymentInfo holds fields mined from request and response bodies.
type paymentInfo struct {
	OrderID   string
	PaymentID string
	Status    string
	ErrorCode string
	Message   string
}

// extractPaymentInfo pulls gateway identifiers out of the request and
// response bodies, tolerating both numeric and string PaymentId values.
func extractPaymentInfo(requestBody, responseBody []byte) paymentInfo {
	var info paymentInfo

	if len(requestBody) > 0 {
		var requestData map[string]any
		if err := json.Unmarshal(requestBody, &requestData); err == nil {
			info.OrderID = stringField(requestData, "order_id", "OrderId")
			info.PaymentID = stringField(requestData, "payment_id", "PaymentId")
		}
	}

	if len(responseBody) > 0 {
		var responseData map[string]any
		if err := json.Unmarshal(responseBody, &responseData); err == nil {
			// The demo server wraps gateway responses in an envelope
			if data, ok := responseData["data"].(map[string]any); ok {
				responseData = data
			}
			if v := stringField(responseData, "OrderId", "order_id"); v != "" {
				info.OrderID = v
			}
			if v := stringField(responseData, "PaymentId", "payment_id"); v != "" {
				info.PaymentID = v
			}
			info.Status = stringField(responseData, "Status", "status")
			info.ErrorCode = stringField(responseData, "ErrorCode", "error_code")
			info.Message = stringField(responseData, "Message", "message")
		}
	}

	return info
}

// stringField reads the first present key as a string, converting numbers.
func stringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := data[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// GetClientIP extracts the real client IP from the request
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take the first IP in case of multiple
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	remoteAddr := r.RemoteAddr
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		ip := remoteAddr[:idx]
		// Handle IPv6 localhost addresses
		if ip == "[::1]" {
			return "127.0.0.1"
		}
		return ip
	}

	return remoteAddr
}
