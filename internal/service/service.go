// Package service defines the backend-agnostic interface for record store operations.
package service

import (
	"context"

	"github.com/sandeepkv93/todoflow/internal/model"
)

// Service is the remote record store. The UI layers never talk HTTP directly.
type Service interface {
	// ListRecords returns every record matching the query, in store sort order.
	ListRecords(ctx context.Context, q Query) ([]model.Record, error)

	// CreateRecord appends one record and returns what the store created.
	CreateRecord(ctx context.Context, fields model.Fields) ([]model.Record, error)

	// PatchRecord overwrites the non-nil fields of one existing record.
	PatchRecord(ctx context.Context, id string, fields model.Fields) ([]model.Record, error)
}
