// Package snapshotstore persists the remote roadmap snapshot served by
// roadmapd.
//
// Records are opaque JSON documents keyed by module id; the store never
// interprets statuses or merges fields. A bulk write replaces the entire
// snapshot atomically, an upsert overwrites one record, and a reset clears
// everything. Two backends exist: SQLite (default, single file under the data
// directory) and Redis (one hash per snapshot).
package snapshotstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"roadmap/internal/config"
)

// ErrInvalidRecord is returned when a record has no id or is not a JSON object.
var ErrInvalidRecord = errors.New("invalid record")

// Record is one stored module document.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Store is the persistence contract shared by every backend.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	ReplaceAll(ctx context.Context, records []Record) error
	Upsert(ctx context.Context, record Record) error
	Reset(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Backend() string
	Close() error
}

// Open connects to the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		return OpenRedis(ctx, cfg.Storage.RedisURL, cfg.Storage.RedisKey)
	case config.StorageSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(ctx, cfg.DatabasePath())
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// ValidateRecord checks a record before it is written.
func ValidateRecord(record Record) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	trimmed := strings.TrimSpace(string(record.Data))
	if !strings.HasPrefix(trimmed, "{") || !json.Valid(record.Data) {
		return fmt.Errorf("%w: %s is not a JSON object", ErrInvalidRecord, record.ID)
	}
	return nil
}

// normalizeBatch validates records and collapses duplicate ids, keeping the
// last occurrence.
func normalizeBatch(records []Record) ([]Record, error) {
	byID := make(map[string]Record, len(records))
	for _, record := range records {
		if err := ValidateRecord(record); err != nil {
			return nil, err
		}
		byID[record.ID] = record
	}
	out := make([]Record, 0, len(byID))
	for _, record := range byID {
		out = append(out, record)
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
}
