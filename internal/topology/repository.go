package topology

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/database"
)

// Repository persists a layout.
type Repository interface {
	Load(ctx context.Context) (devicestatus.Layout, error)
	Save(ctx context.Context, layout devicestatus.Layout) error
	IsEmpty(ctx context.Context) (bool, error)
}

// SQLiteRepository stores the layout in the link_entries and parent_ranges tables.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a repository over a migrated database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// IsEmpty reports whether no parent range has been stored.
func (r *SQLiteRepository) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parent_ranges`).Scan(&n); err != nil {
		return false, fmt.Errorf("counting parent ranges: %w", err)
	}
	return n == 0, nil
}

// Load reads and validates the stored layout.
// Returns ErrEmpty when nothing has been stored yet.
func (r *SQLiteRepository) Load(ctx context.Context) (devicestatus.Layout, error) {
	layout := devicestatus.Layout{
		Ranges: make(map[devicestatus.Source]devicestatus.SeqRange),
	}

	if err := r.loadRanges(ctx, &layout); err != nil {
		return devicestatus.Layout{}, err
	}
	if len(layout.Ranges) == 0 {
		return devicestatus.Layout{}, ErrEmpty
	}
	if err := r.loadLinks(ctx, &layout); err != nil {
		return devicestatus.Layout{}, err
	}

	if err := layout.Validate(); err != nil {
		return devicestatus.Layout{}, fmt.Errorf("stored topology: %w", err)
	}
	return layout, nil
}

func (r *SQLiteRepository) loadRanges(ctx context.Context, layout *devicestatus.Layout) error {
	const query = `SELECT source, start_seq, end_seq, position
		FROM parent_ranges ORDER BY position IS NULL, position, source`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("querying parent ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source   string
			rng      devicestatus.SeqRange
			position sql.NullInt64
		)
		if err := rows.Scan(&source, &rng.Start, &rng.End, &position); err != nil {
			return fmt.Errorf("scanning parent range: %w", err)
		}
		src := devicestatus.Source(source)
		layout.Ranges[src] = rng
		if position.Valid {
			layout.Order = append(layout.Order, src)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating parent ranges: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadLinks(ctx context.Context, layout *devicestatus.Layout) error {
	const query = `SELECT source, parent_seq, child_seqs
		FROM link_entries ORDER BY source, parent_seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("querying link entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry    devicestatus.LinkEntry
			source   string
			children string
		)
		if err := rows.Scan(&source, &entry.ParentSeq, &children); err != nil {
			return fmt.Errorf("scanning link entry: %w", err)
		}
		entry.Source = devicestatus.Source(source)
		if err := json.Unmarshal([]byte(children), &entry.ChildSeqs); err != nil {
			return fmt.Errorf("link entry %s/%d: decoding child_seqs: %w", source, entry.ParentSeq, err)
		}
		layout.Links = append(layout.Links, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating link entries: %w", err)
	}
	return nil
}

// Save validates layout and replaces the stored topology in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, layout devicestatus.Layout) error {
	if err := layout.Validate(); err != nil {
		return err
	}

	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		return replaceLayout(ctx, tx, layout)
	})
}

func replaceLayout(ctx context.Context, tx *sql.Tx, layout devicestatus.Layout) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM link_entries`); err != nil {
		return fmt.Errorf("clearing link entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parent_ranges`); err != nil {
		return fmt.Errorf("clearing parent ranges: %w", err)
	}

	position := make(map[devicestatus.Source]int, len(layout.Order))
	for i, src := range layout.Order {
		position[src] = i
	}

	const insertRange = `INSERT INTO parent_ranges (source, start_seq, end_seq, position)
		VALUES (?, ?, ?, ?)`
	for src, rng := range layout.Ranges {
		pos := sql.NullInt64{}
		if i, ok := position[src]; ok {
			pos = sql.NullInt64{Int64: int64(i), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertRange, string(src), rng.Start, rng.End, pos); err != nil {
			return fmt.Errorf("inserting parent range %s: %w", src, err)
		}
	}

	const insertLink = `INSERT INTO link_entries (source, parent_seq, child_seqs)
		VALUES (?, ?, ?)`
	for _, e := range layout.Links {
		children := e.ChildSeqs
		if children == nil {
			children = []int{}
		}
		encoded, err := json.Marshal(children)
		if err != nil {
			return fmt.Errorf("encoding child_seqs for %s/%d: %w", e.Source, e.ParentSeq, err)
		}
		if _, err := tx.ExecContext(ctx, insertLink, string(e.Source), e.ParentSeq, string(encoded)); err != nil {
			return fmt.Errorf("inserting link entry %s/%d: %w", e.Source, e.ParentSeq, err)
		}
	}

	return nil
}
