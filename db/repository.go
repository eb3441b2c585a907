package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Generation statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 20

// createdAtLayout is fixed-width so lexical order matches time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// GenerationRecord is one row of the generations table: a single create or
// edit invocation and its outcome.
type GenerationRecord struct {
	ID           int64     // Auto-incremented primary key
	RequestID    string    // X-Client-Request-Id sent to the API
	Command      string    // "create" or "edit"
	Prompt       string    // Prompt text as sent
	Model        string    // Image model
	N            int       // Number of images requested
	Size         string    // Requested size
	Quality      string    // Requested quality
	OutputFormat string    // png, jpeg or webp
	InputImages  int       // Number of source images (edits)
	Outputs      []string  // Files written, "-" for stdout
	InputTokens  int       // Billed input tokens
	OutputTokens int       // Billed output tokens
	TotalTokens  int       // Billed total tokens
	CostUSD      float64   // Estimated cost
	DurationMS   int64     // Wall time of the API call
	Status       string    // StatusSuccess or StatusError
	ErrorMessage string    // Error text when Status is StatusError
	CreatedAt    time.Time // When the row was written
}

// Repository reads and writes generation history.
type Repository struct {
	db  *Database
	now func() time.Time
}

// NewRepository creates a Repository over an open Database.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db, now: time.Now}
}

// InsertGeneration stores rec and returns its id. CreatedAt is set to the
// current time when zero.
func (r *Repository) InsertGeneration(ctx context.Context, rec GenerationRecord) (int64, error) {
	conn, err := r.conn()
	if err != nil {
		return 0, err
	}

	if rec.Status == "" {
		rec.Status = StatusSuccess
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	outputs, err := json.Marshal(rec.Outputs)
	if err != nil {
		return 0, fmt.Errorf("db: failed to encode outputs: %w", err)
	}

	query := `
		INSERT INTO generations (
			request_id, command, prompt, model, n, size, quality, output_format,
			input_images, outputs, input_tokens, output_tokens, total_tokens,
			cost_usd, duration_ms, status, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := conn.ExecContext(ctx, query,
		rec.RequestID,
		rec.Command,
		rec.Prompt,
		rec.Model,
		rec.N,
		nullString(rec.Size),
		nullString(rec.Quality),
		nullString(rec.OutputFormat),
		rec.InputImages,
		string(outputs),
		rec.InputTokens,
		rec.OutputTokens,
		rec.TotalTokens,
		rec.CostUSD,
		rec.DurationMS,
		rec.Status,
		nullString(rec.ErrorMessage),
		rec.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("db: failed to insert generation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db: failed to get last insert id: %w", err)
	}
	return id, nil
}

const selectGenerations = `
	SELECT id, request_id, command, prompt, model, n,
		   COALESCE(size, ''), COALESCE(quality, ''), COALESCE(output_format, ''),
		   input_images, COALESCE(outputs, ''),
		   COALESCE(input_tokens, 0), COALESCE(output_tokens, 0), COALESCE(total_tokens, 0),
		   COALESCE(cost_usd, 0), COALESCE(duration_ms, 0),
		   status, COALESCE(error_message, ''), created_at
	FROM generations`

// ListGenerations returns the most recent records, newest first.
func (r *Repository) ListGenerations(ctx context.Context, limit int) ([]GenerationRecord, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := conn.QueryContext(ctx, selectGenerations+`
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("db: failed to query generations: %w", err)
	}
	return scanGenerations(rows)
}

// FindByRequestID returns the records whose request id starts with prefix,
// so the short ids shown by the history listing can be used. An empty
// prefix matches nothing.
func (r *Repository) FindByRequestID(ctx context.Context, prefix string) ([]GenerationRecord, error) {
	if prefix == "" {
		return nil, nil
	}
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, selectGenerations+`
		WHERE substr(request_id, 1, ?) = ?
		ORDER BY created_at DESC, id DESC`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("db: failed to query generations: %w", err)
	}
	return scanGenerations(rows)
}

// CountGenerations returns the number of stored records.
func (r *Repository) CountGenerations(ctx context.Context) (int64, error) {
	conn, err := r.conn()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations").Scan(&count); err != nil {
		return 0, fmt.Errorf("db: failed to count generations: %w", err)
	}
	return count, nil
}

// TotalCost returns the summed estimated cost of all successful generations.
func (r *Repository) TotalCost(ctx context.Context) (float64, error) {
	conn, err := r.conn()
	if err != nil {
		return 0, err
	}

	var total float64
	err = conn.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(cost_usd), 0) FROM generations WHERE status = ?", StatusSuccess,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db: failed to sum cost: %w", err)
	}
	return total, nil
}

func (r *Repository) conn() (*sql.DB, error) {
	if r == nil || r.db == nil || r.db.DB() == nil {
		return nil, errors.New("db: database connection is nil")
	}
	return r.db.DB(), nil
}

func scanGenerations(rows *sql.Rows) ([]GenerationRecord, error) {
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var outputs, createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.Command,
			&rec.Prompt,
			&rec.Model,
			&rec.N,
			&rec.Size,
			&rec.Quality,
			&rec.OutputFormat,
			&rec.InputImages,
			&outputs,
			&rec.InputTokens,
			&rec.OutputTokens,
			&rec.TotalTokens,
			&rec.CostUSD,
			&rec.DurationMS,
			&rec.Status,
			&rec.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("db: failed to scan generation row: %w", err)
		}

		if outputs != "" && outputs != "null" {
			if err := json.Unmarshal([]byte(outputs), &rec.Outputs); err != nil {
				return nil, fmt.Errorf("db: failed to decode outputs of generation %d: %w", rec.ID, err)
			}
		}
		rec.CreatedAt, _ = time.Parse(createdAtLayout, createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: error iterating generation rows: %w", err)
	}
	return records, nil
}

// nullString returns nil for empty strings so optional columns stay NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
