// Package storage implements the record store: a durable mapping from
// collection name to one JSON document holding the whole collection.
//
// Whole-collection read and overwrite are the only primitives. There is no
// partial update and no indexing; filtering happens in the typed layer.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Persisted collection names. These are part of the on-disk contract.
const (
	CollectionUsers        = "wallet_users"
	CollectionCurrentUser  = "wallet_currentUser"
	CollectionAccounts     = "wallet_accounts"
	CollectionTransactions = "wallet_transactions"
	CollectionCategories   = "wallet_categories"
	CollectionBudgets      = "wallet_budgets"
)

// Store is the raw document store. Load returns nil for an absent
// collection; Save overwrites the collection in a single write.
type Store interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, data []byte) error
	Delete(ctx context.Context, collection string) error
	Close() error
}

// Owned is implemented by every entity that belongs to a user.
type Owned interface {
	Owner() string
}

// LoadAll decodes a whole collection. An absent collection loads as an
// empty slice; a persisted document that does not match the schema fails
// fast instead of propagating zero values.
func LoadAll[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	raw, err := s.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var records []T
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return records, nil
}

// SaveAll overwrites a whole collection.
func SaveAll[T any](ctx context.Context, s Store, collection string, records []T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.Save(ctx, collection, data); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

// LoadOne decodes a single-record collection such as the session pointer.
// It returns nil when the collection is absent.
func LoadOne[T any](ctx context.Context, s Store, collection string) (*T, error) {
	raw, err := s.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var record T
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return &record, nil
}

// SaveOne overwrites a single-record collection.
func SaveOne[T any](ctx context.Context, s Store, collection string, record T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := s.Save(ctx, collection, data); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

// QueryByUser filters a collection down to one user's records. It is a
// pure filter over the loaded slice.
func QueryByUser[T Owned](records []T, userID string) []T {
	var out []T
	for _, r := range records {
		if r.Owner() == userID {
			out = append(out, r)
		}
	}
	return out
}
