package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/tinkoffpay/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// GatewayLogIndex is where merchant-API round-trips are indexed.
const GatewayLogIndex = "tinkoffpay-gateway-logs"

// Client wraps the OpenSearch client
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // For development/testing
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client: client,
		config: cfg,
	}

	if err := osClient.setupIndex(); err != nil {
		log.Printf("Warning: Failed to setup OpenSearch index: %v", err)
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled reports whether logging to OpenSearch is configured on.
func (c *Client) IsEnabled() bool {
	return c.config != nil && c.config.EnableLogging
}

// setupIndex creates the gateway log index when it does not exist yet.
func (c *Client) setupIndex() error {
	exists, err := c.indexExists(GatewayLogIndex)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := c.createLogIndex(GatewayLogIndex); err != nil {
		return err
	}
	log.Printf("Created OpenSearch index: %s", GatewayLogIndex)
	return nil
}

// indexExists checks if an index exists
func (c *Client) indexExists(indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(context.Background(), c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

// createLogIndex creates the log index with field mappings suited for the
// gateway log documents.
func (c *Client) createLogIndex(indexName string) error {
	mapping := `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"timestamp":     {"type": "date"},
				"operation":     {"type": "keyword"},
				"request_id":    {"type": "keyword"},
				"order_id":      {"type": "keyword"},
				"payment_id":    {"type": "keyword"},
				"status":        {"type": "keyword"},
				"error_code":    {"type": "keyword"},
				"message":       {"type": "text"},
				"client_ip":     {"type": "ip"},
				"duration_ms":   {"type": "long"},
				"request_body":  {"type": "text"},
				"response_body": {"type": "text"}
			}
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(context.Background(), c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index %s: %s", indexName, res.String())
	}

	return nil
}
