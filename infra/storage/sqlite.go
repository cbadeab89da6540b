package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// PaymentLog is a single recorded gateway round-trip.
type PaymentLog struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Operation  string    `json:"operation"`
	OrderID    string    `json:"order_id,omitempty"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Message    string    `json:"message,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// SQLiteStore persists payment logs for the demo server
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if it's a busy error
		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// Exponential backoff: 10ms, 20ms, 40ms, 80ms
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			// Not a retry-able error
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// NewSQLiteStore opens (or creates) the payment log database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// SQLite connection string with multi-process optimizations
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.optimizeForMultiProcess(); err != nil {
		log.Printf("Warning: Failed to apply optimizations: %v", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS payment_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		order_id TEXT,
		payment_id TEXT,
		status TEXT,
		error_code TEXT,
		message TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_payment_logs_order ON payment_logs(order_id);
	CREATE INDEX IF NOT EXISTS idx_payment_logs_created ON payment_logs(created_at);
	`

	_, err := s.db.Exec(query)
	return err
}

// optimizeForMultiProcess applies SQLite optimizations for multi-process access
func (s *SQLiteStore) optimizeForMultiProcess() error {
	optimizations := []string{
		"PRAGMA journal_mode = WAL;",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL;", // Balance between safety and speed
		"PRAGMA cache_size = 1000;",    // Increase cache size
		"PRAGMA busy_timeout = 30000;", // 30 second timeout for lock waits
		"PRAGMA temp_store = memory;",  // Store temp tables in memory
		"PRAGMA optimize;",             // Optimize database
	}

	for _, pragma := range optimizations {
		if _, err := s.db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode)
	if err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	return nil
}

// Insert records a payment log entry with retry logic.
func (s *SQLiteStore) Insert(entry PaymentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		query := `
		INSERT INTO payment_logs (request_id, operation, order_id, payment_id, status, error_code, message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := s.db.Exec(query,
			entry.RequestID, entry.Operation, entry.OrderID, entry.PaymentID,
			entry.Status, entry.ErrorCode, entry.Message, entry.DurationMs)
		if err != nil {
			return fmt.Errorf("failed to insert payment log: %w", err)
		}

		return nil
	}, 3) // Max 3 retries
}

// List returns the most recent payment logs, newest first.
func (s *SQLiteStore) List(limit int) ([]PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var logs []PaymentLog
	err := s.retryOperation(func() error {
		query := `
		SELECT id, request_id, operation, order_id, payment_id, status, error_code, message, duration_ms, created_at
		FROM payment_logs
		ORDER BY id DESC
		LIMIT ?
		`

		rows, err := s.db.Query(query, limit)
		if err != nil {
			return fmt.Errorf("failed to query payment logs: %w", err)
		}
		defer rows.Close()

		logs = nil
		for rows.Next() {
			var entry PaymentLog
			if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Operation, &entry.OrderID,
				&entry.PaymentID, &entry.Status, &entry.ErrorCode, &entry.Message,
				&entry.DurationMs, &entry.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			logs = append(logs, entry)
		}

		if err = rows.Err(); err != nil {
			return fmt.Errorf("error iterating rows: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	return logs, err
}

// FindByOrder returns all log entries recorded for an order, oldest first.
func (s *SQLiteStore) FindByOrder(orderID string) ([]PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []PaymentLog
	err := s.retryOperation(func() error {
		query := `
		SELECT id, request_id, operation, order_id, payment_id, status, error_code, message, duration_ms, created_at
		FROM payment_logs
		WHERE order_id = ?
		ORDER BY id ASC
		`

		rows, err := s.db.Query(query, orderID)
		if err != nil {
			return fmt.Errorf("failed to query payment logs: %w", err)
		}
		defer rows.Close()

		logs = nil
		for rows.Next() {
			var entry PaymentLog
			if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Operation, &entry.OrderID,
				&entry.PaymentID, &entry.Status, &entry.ErrorCode, &entry.Message,
				&entry.DurationMs, &entry.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			logs = append(logs, entry)
		}

		if err = rows.Err(); err != nil {
			return fmt.Errorf("error iterating rows: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	return logs, err
}

// Purge removes log entries older than the retention window.
func (s *SQLiteStore) Purge(retentionDays int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if retentionDays <= 0 {
		retentionDays = 30
	}

	var removed int64
	err := s.retryOperation(func() error {
		query := fmt.Sprintf(`DELETE FROM payment_logs WHERE created_at < datetime('now', '-%d days')`, retentionDays)

		res, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to purge payment logs: %w", err)
		}

		removed, _ = res.RowsAffected()
		return nil
	}, 3) // Max 3 retries

	return removed, err
}

// Stats returns database statistics for the health endpoint.
func (s *SQLiteStore) Stats() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM payment_logs").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count payment logs: %w", err)
	}
	stats["total_logs"] = count

	if info, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = info.Size()
	}
	stats["db_path"] = s.path

	return stats, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
