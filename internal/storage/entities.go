package storage

import "time"

// Record is one row of a record-store table. Nil fields were never set.
type Record struct {
	ID          string
	Table       string
	Title       *string
	IsCompleted *bool
	CreatedAt   time.Time
}

// RecordPatch carries the fields to overwrite. Nil fields are left alone.
type RecordPatch struct {
	Title       *string
	IsCompleted *bool
}

type SortColumn string

const (
	SortByCreated SortColumn = "created_at"
	SortByTitle   SortColumn = "title"
)

type RecordListFilter struct {
	Table      string
	Search     string
	SortBy     SortColumn
	Descending bool
	Limit      int
	Offset     int
}
