package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateRecord(ctx context.Context, in Record) error
	GetRecord(ctx context.Context, table, id string) (Record, error)
	PatchRecord(ctx context.Context, table, id string, patch RecordPatch) (Record, error)
	DeleteRecord(ctx context.Context, table, id string) error
	ListRecords(ctx context.Context, filter RecordListFilter) ([]Record, error)
}
