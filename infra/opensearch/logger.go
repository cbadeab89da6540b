package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// GatewayLog is one merchant-API round-trip as indexed in OpenSearch.
type GatewayLog struct {
	Timestamp    time.Time `json:"timestamp"`
	Operation    string    `json:"operation"`
	RequestID    string    `json:"request_id"`
	OrderID      string    `json:"order_id,omitempty"`
	PaymentID    string    `json:"payment_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	ErrorCode    string    `json:"error_code,omitempty"`
	Message      string    `json:"message,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	RequestBody  string    `json:"request_body,omitempty"`
	ResponseBody string    `json:"response_body,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogGatewayCall indexes one gateway round-trip. When OpenSearch logging is
// disabled this is a no-op.
func (l *Logger) LogGatewayCall(ctx context.Context, entry GatewayLog) error {
	if !l.client.IsEnabled() {
		return nil
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: GatewayLogIndex,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index gateway log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index gateway log: %s", res.String())
	}

	return nil
}

// RecentErrors returns gateway calls with a non-zero error code from the
// last given number of hours.
func (l *Logger) RecentErrors(ctx context.Context, hours int) ([]GatewayLog, error) {
	if !l.client.IsEnabled() {
		return nil, nil
	}

	query := map[string]any{
		"size": 100,
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
		},
		"query": map[string]any{
			"bool": map[string]any{
				"must_not": []map[string]any{
					{"term": map[string]any{"error_code": "0"}},
				},
				"filter": []map[string]any{
					{"range": map[string]any{
						"timestamp": map[string]any{
							"gte": fmt.Sprintf("now-%dh", hours),
						},
					}},
				},
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{GatewayLogIndex},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("failed to search gateway logs: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to search gateway logs: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source GatewayLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	logs := make([]GatewayLog, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		logs = append(logs, hit.Source)
	}

	return logs, nil
}
