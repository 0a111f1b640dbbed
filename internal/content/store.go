// Package content defines the data-access collaborator for portfolio
// content: a record store over a fixed set of kinds.
package content

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrStoreClosed   = errors.New("content store is closed")
	ErrUnknownKind   = errors.New("unknown content kind")
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidValue  = errors.New("invalid column value")
)

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "!="
)

// Filter restricts a query to rows whose column compares to Value.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows where column equals v.
func Eq(column string, v any) Filter {
	return Filter{Column: column, Op: OpEq, Value: v}
}

// Neq matches rows where column differs from v.
func Neq(column string, v any) Filter {
	return Filter{Column: column, Op: OpNeq, Value: v}
}

// Order sorts by a column.
type Order struct {
	Column string
	Desc   bool
}

// Asc sorts by column ascending.
func Asc(column string) Order {
	return Order{Column: column}
}

// Desc sorts by column descending.
func Desc(column string) Order {
	return Order{Column: column, Desc: true}
}

// QueryOptions configures Fetch, Count and DeleteWhere.
type QueryOptions struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
	Offset  int
}

// Validate checks that every column named by opts exists on kind.
func (o QueryOptions) Validate(kind Kind) error {
	cols, err := Columns(kind)
	if err != nil {
		return err
	}
	for _, f := range o.Filters {
		if _, ok := cols[f.Column]; !ok {
			return unknownColumn(kind, f.Column)
		}
		if f.Op != OpEq && f.Op != OpNeq {
			return errors.New("invalid filter operator: " + string(f.Op))
		}
	}
	for _, ord := range o.OrderBy {
		if _, ok := cols[ord.Column]; !ok {
			return unknownColumn(kind, ord.Column)
		}
	}
	if o.Limit < 0 || o.Offset < 0 {
		return errors.New("limit and offset must not be negative")
	}
	return nil
}

// Store is the record store every portfolio operation goes through.
type Store interface {
	// Fetch returns the records of kind matching opts.
	Fetch(ctx context.Context, kind Kind, opts QueryOptions) ([]Record, error)

	// Get returns a single record by id.
	Get(ctx context.Context, kind Kind, id string) (Record, error)

	// Count returns the number of records matching opts.
	Count(ctx context.Context, kind Kind, opts QueryOptions) (int64, error)

	// Insert stores rec, assigning id and creation time when absent, and
	// returns the stored record.
	Insert(ctx context.Context, kind Kind, rec Record) (Record, error)

	// Update changes the given fields of a record. Kinds with an
	// updated_at column have it refreshed.
	Update(ctx context.Context, kind Kind, id string, fields Record) (Record, error)

	// Delete removes a record by id.
	Delete(ctx context.Context, kind Kind, id string) error

	// DeleteWhere removes every record matching the filters of opts.
	DeleteWhere(ctx context.Context, kind Kind, opts QueryOptions) (int64, error)

	// IncrementDailyVisit creates the site_analytics row for date at 1 or
	// increments it, returning the new count.
	IncrementDailyVisit(ctx context.Context, date string) (int64, error)

	// IncrementClick creates the portfolio_clicks row for itemID at 1 or
	// increments it, returning the new count.
	IncrementClick(ctx context.Context, itemID string, at time.Time) (int64, error)

	// Tx runs fn in a unit of work that commits only if fn returns nil.
	Tx(ctx context.Context, fn func(Store) error) error

	// Close closes the store and releases resources.
	Close() error
}
