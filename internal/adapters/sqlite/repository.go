package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/workreports/internal/domain"
)

//go:embed schema.sql
var schema string

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database and applies the schema.
func New(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", withBusyTimeout(dsn))
	if err != nil {
		return nil, err
	}
	// Single connection: SQLite has one writer, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	r := &Repository{db: db}
	if err := r.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// withBusyTimeout appends _busy_timeout to dsn unless the caller already set
// it, keeping any query string DB_PATH carries.
func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}

// EnsureSchema creates missing tables and indexes.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ── Day reports ───────────────────────────────────────────────────────────────

func (r *Repository) RecordDayReport(ctx context.Context, d *domain.DayReport) (bool, error) {
	d.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO day_reports (employee_address, working_time, created_at)
		VALUES (?,?,?)`,
		d.EmployeeAddress, d.WorkingTime.Unix(), d.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	id, _ := res.LastInsertId()
	d.ID = id
	return true, nil
}

func (r *Repository) ListEmployees(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT employee_address
		FROM day_reports
		GROUP BY employee_address
		ORDER BY MIN(id)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) ListDayReports(ctx context.Context, employeeAddress string) ([]domain.DayReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_address, working_time, created_at
		FROM day_reports WHERE employee_address=? ORDER BY working_time, id`, employeeAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.DayReport
	for rows.Next() {
		var d domain.DayReport
		var unix int64
		if err := rows.Scan(&d.ID, &d.EmployeeAddress, &unix, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.WorkingTime = time.Unix(unix, 0).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}
