package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/portfolio/internal/content"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for stamped columns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store implements content.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

// New creates a new SQLite-based content store.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open content database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := newStore(db, opts)
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize content database: %w", err)
	}

	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory(opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := newStore(db, opts)
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// NewWithDB creates a store using an existing database connection.
func NewWithDB(db *sql.DB, opts ...Option) (*Store, error) {
	store := newStore(db, opts)
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize content tables: %w", err)
	}
	return store, nil
}

func newStore(db *sql.DB, opts []Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	_, err := s.db.Exec(schema)
	return err
}

// DB returns the underlying database so other stores can share the file.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ops() ops {
	return ops{q: s.db, now: s.now}
}

// Fetch returns the records of kind matching opts.
func (s *Store) Fetch(ctx context.Context, kind content.Kind, opts content.QueryOptions) ([]content.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, content.ErrStoreClosed
	}
	return s.ops().fetch(ctx, kind, opts)
}

// Get returns a single record by id.
func (s *Store) Get(ctx context.Context, kind content.Kind, id string) (content.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, content.ErrStoreClosed
	}
	return s.ops().get(ctx, kind, id)
}

// Count returns the number of records matching opts.
func (s *Store) Count(ctx context.Context, kind content.Kind, opts content.QueryOptions) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, content.ErrStoreClosed
	}
	return s.ops().count(ctx, kind, opts)
}

// Insert stores rec and returns the stored record.
func (s *Store) Insert(ctx context.Context, kind content.Kind, rec content.Record) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, content.ErrStoreClosed
	}
	return s.ops().insert(ctx, kind, rec)
}

// Update changes the given fields of a record.
func (s *Store) Update(ctx context.Context, kind content.Kind, id string, fields content.Record) (content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, content.ErrStoreClosed
	}
	return s.ops().update(ctx, kind, id, fields)
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, kind content.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return content.ErrStoreClosed
	}
	return s.ops().delete(ctx, kind, id)
}

// DeleteWhere removes every record matching the filters of opts.
func (s *Store) DeleteWhere(ctx context.Context, kind content.Kind, opts content.QueryOptions) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, content.ErrStoreClosed
	}
	return s.ops().deleteWhere(ctx, kind, opts)
}

// IncrementDailyVisit upserts the visit counter for date.
func (s *Store) IncrementDailyVisit(ctx context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, content.ErrStoreClosed
	}
	return s.ops().incrementDailyVisit(ctx, date)
}

// IncrementClick upserts the click counter for itemID.
func (s *Store) IncrementClick(ctx context.Context, itemID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, content.ErrStoreClosed
	}
	return s.ops().incrementClick(ctx, itemID, at)
}

// Tx runs fn inside a database transaction. Other callers wait until the
// transaction finishes.
func (s *Store) Tx(ctx context.Context, fn func(content.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return content.ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txStore{ops: ops{q: tx, now: s.now}}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// txStore is the content.Store handed to Tx callbacks. The enclosing
// Store already holds the lock.
type txStore struct {
	ops
}

func (t *txStore) Fetch(ctx context.Context, kind content.Kind, opts content.QueryOptions) ([]content.Record, error) {
	return t.fetch(ctx, kind, opts)
}

func (t *txStore) Get(ctx context.Context, kind content.Kind, id string) (content.Record, error) {
	return t.get(ctx, kind, id)
}

func (t *txStore) Count(ctx context.Context, kind content.Kind, opts content.QueryOptions) (int64, error) {
	return t.count(ctx, kind, opts)
}

func (t *txStore) Insert(ctx context.Context, kind content.Kind, rec content.Record) (content.Record, error) {
	return t.insert(ctx, kind, rec)
}

func (t *txStore) Update(ctx context.Context, kind content.Kind, id string, fields content.Record) (content.Record, error) {
	return t.update(ctx, kind, id, fields)
}

func (t *txStore) Delete(ctx context.Context, kind content.Kind, id string) error {
	return t.delete(ctx, kind, id)
}

func (t *txStore) DeleteWhere(ctx context.Context, kind content.Kind, opts content.QueryOptions) (int64, error) {
	return t.deleteWhere(ctx, kind, opts)
}

func (t *txStore) IncrementDailyVisit(ctx context.Context, date string) (int64, error) {
	return t.incrementDailyVisit(ctx, date)
}

func (t *txStore) IncrementClick(ctx context.Context, itemID string, at time.Time) (int64, error) {
	return t.incrementClick(ctx, itemID, at)
}

// Tx runs fn within the current transaction.
func (t *txStore) Tx(ctx context.Context, fn func(content.Store) error) error {
	return fn(t)
}

func (t *txStore) Close() error {
	return errors.New("cannot close store inside a transaction")
}

// ops holds the queries shared by Store and txStore.
type ops struct {
	q   querier
	now func() time.Time
}

func (o ops) fetch(ctx context.Context, kind content.Kind, opts content.QueryOptions) ([]content.Record, error) {
	cols, err := content.Schema(kind)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(kind); err != nil {
		return nil, err
	}

	where, args, err := buildWhere(kind, opts.Filters)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s", columnList(cols), kind, where)

	order := make([]string, 0, len(opts.OrderBy)+1)
	for _, o := range opts.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		order = append(order, o.Column+" "+dir)
	}
	order = append(order, "rowid ASC")
	b.WriteString(" ORDER BY " + strings.Join(order, ", "))

	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit == 0 {
			limit = -1
		}
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, opts.Offset)
	}

	rows, err := o.q.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", kind, err)
	}
	defer rows.Close()

	var records []content.Record
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", kind, err)
	}

	return records, nil
}

func (o ops) get(ctx context.Context, kind content.Kind, id string) (content.Record, error) {
	records, err := o.fetch(ctx, kind, content.QueryOptions{
		Filters: []content.Filter{content.Eq(content.ColID, id)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %s", content.ErrNotFound, kind, id)
	}
	return records[0], nil
}

func (o ops) count(ctx context.Context, kind content.Kind, opts content.QueryOptions) (int64, error) {
	if err := opts.Validate(kind); err != nil {
		return 0, err
	}
	where, args, err := buildWhere(kind, opts.Filters)
	if err != nil {
		return 0, err
	}

	var n int64
	err = o.q.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", kind, where), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return n, nil
}

func (o ops) insert(ctx context.Context, kind content.Kind, rec content.Record) (content.Record, error) {
	cols, err := content.Schema(kind)
	if err != nil {
		return nil, err
	}
	values, err := content.Coerce(kind, rec)
	if err != nil {
		return nil, err
	}

	if values.ID() == "" {
		values[content.ColID] = uuid.New().String()
	}
	now := o.now()

	stored := make(content.Record, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		v, ok := values[c.Name]
		if !ok {
			v = content.Zero(c.Type)
		}
		if t, isTime := v.(time.Time); isTime && t.IsZero() && c.Stamped {
			v = now
		}
		enc, err := encode(c, v)
		if err != nil {
			return nil, err
		}
		args[i] = enc
		stored[c.Name], _ = decode(c, enc)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		kind, columnList(cols), placeholders(len(cols)))
	if _, err := o.q.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", kind, err)
	}

	return stored, nil
}

func (o ops) update(ctx context.Context, kind content.Kind, id string, fields content.Record) (content.Record, error) {
	cols, err := content.Columns(kind)
	if err != nil {
		return nil, err
	}
	values, err := content.Coerce(kind, fields)
	if err != nil {
		return nil, err
	}
	delete(values, content.ColID)
	delete(values, content.ColCreatedAt)

	if c, ok := cols[content.ColUpdatedAt]; ok && c.Type == content.TypeTime {
		if _, set := values[content.ColUpdatedAt]; !set {
			values[content.ColUpdatedAt] = o.now()
		}
	}

	if len(values) == 0 {
		return o.get(ctx, kind, id)
	}

	sets := make([]string, 0, len(values))
	args := make([]any, 0, len(values)+1)
	for name, v := range values {
		enc, err := encode(cols[name], v)
		if err != nil {
			return nil, err
		}
		sets = append(sets, name+" = ?")
		args = append(args, enc)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", kind, strings.Join(sets, ", "))
	result, err := o.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s %s", content.ErrNotFound, kind, id)
	}

	return o.get(ctx, kind, id)
}

func (o ops) delete(ctx context.Context, kind content.Kind, id string) error {
	if _, err := content.Schema(kind); err != nil {
		return err
	}

	result, err := o.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", content.ErrNotFound, kind, id)
	}

	return nil
}

func (o ops) deleteWhere(ctx context.Context, kind content.Kind, opts content.QueryOptions) (int64, error) {
	if err := opts.Validate(kind); err != nil {
		return 0, err
	}
	if len(opts.Filters) == 0 {
		return 0, errors.New("refusing to delete without filters")
	}

	where, args, err := buildWhere(kind, opts.Filters)
	if err != nil {
		return 0, err
	}

	result, err := o.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", kind, where), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return result.RowsAffected()
}

func (o ops) incrementDailyVisit(ctx context.Context, date string) (int64, error) {
	now := o.now().UnixNano()

	var count int64
	err := o.q.QueryRowContext(ctx, `
		INSERT INTO site_analytics (id, created_at, visit_date, visit_count, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(visit_date) DO UPDATE SET
			visit_count = visit_count + 1,
			updated_at = excluded.updated_at
		RETURNING visit_count
	`, uuid.New().String(), now, date, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment visits for %s: %w", date, err)
	}
	return count, nil
}

func (o ops) incrementClick(ctx context.Context, itemID string, at time.Time) (int64, error) {
	var count int64
	err := o.q.QueryRowContext(ctx, `
		INSERT INTO portfolio_clicks (id, created_at, portfolio_item_id, click_count, last_clicked_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(portfolio_item_id) DO UPDATE SET
			click_count = click_count + 1,
			last_clicked_at = excluded.last_clicked_at
		RETURNING click_count
	`, uuid.New().String(), o.now().UnixNano(), itemID, at.UnixNano()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment clicks for %s: %w", itemID, err)
	}
	return count, nil
}

func buildWhere(kind content.Kind, filters []content.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	cols, err := content.Columns(kind)
	if err != nil {
		return "", nil, err
	}

	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		values, err := content.Coerce(kind, content.Record{f.Column: f.Value})
		if err != nil {
			return "", nil, err
		}
		enc, err := encode(cols[f.Column], values[f.Column])
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf("%s %s ?", f.Column, f.Op))
		args = append(args, enc)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func columnList(cols []content.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func scanRecord(rows *sql.Rows, cols []content.Column) (content.Record, error) {
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	rec := make(content.Record, len(cols))
	for i, c := range cols {
		v, err := decode(c, raw[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		rec[c.Name] = v
	}
	return rec, nil
}

// encode converts a coerced value to its SQLite representation. Times
// are stored as Unix nanoseconds, bools as 0/1 and lists as JSON.
func encode(c content.Column, v any) (any, error) {
	switch c.Type {
	case content.TypeBool:
		if b, _ := v.(bool); b {
			return int64(1), nil
		}
		return int64(0), nil
	case content.TypeTime:
		t, _ := v.(time.Time)
		if t.IsZero() {
			return int64(0), nil
		}
		return t.UnixNano(), nil
	case content.TypeList:
		list, _ := v.([]string)
		if list == nil {
			list = []string{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", c.Name, err)
		}
		return string(data), nil
	default:
		return v, nil
	}
}

func decode(c content.Column, raw any) (any, error) {
	switch c.Type {
	case content.TypeText:
		switch v := raw.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case nil:
			return "", nil
		}
	case content.TypeInt:
		if n, ok := raw.(int64); ok {
			return n, nil
		}
		if raw == nil {
			return int64(0), nil
		}
	case content.TypeBool:
		n, _ := raw.(int64)
		return n != 0, nil
	case content.TypeTime:
		n, _ := raw.(int64)
		if n == 0 {
			return time.Time{}, nil
		}
		return time.Unix(0, n).UTC(), nil
	case content.TypeList:
		var s string
		switch v := raw.(type) {
		case string:
			s = v
		case []byte:
			s = string(v)
		}
		list := []string{}
		if s != "" {
			if err := json.Unmarshal([]byte(s), &list); err != nil {
				return nil, err
			}
		}
		return list, nil
	}
	return nil, fmt.Errorf("unexpected %T for %s column", raw, c.Type)
}
