package ports

import (
	"context"
	"io"

	"github.com/csg33k/workreports/internal/domain"
)

// ReportsOpener constructs a reports handle for an employee and a working
// time. The arguments are passed exactly as the visitor typed them.
type ReportsOpener interface {
	Open(ctx context.Context, employeeAddress, workingTime string) (Reports, error)
}

// Reports is an opened handle. Each accessor returns a display-ready value.
type Reports interface {
	Employees(ctx context.Context) (string, error)
	DayReports(ctx context.Context) (string, error)
	GoodPoints(ctx context.Context) (string, error)
	BadPoints(ctx context.Context) (string, error)
}

// DayReportRepository defines persistence operations for the ledger.
type DayReportRepository interface {
	// RecordDayReport stores r unless the same employee already filed a
	// report for the same working time. It reports whether a row was added.
	RecordDayReport(ctx context.Context, r *domain.DayReport) (bool, error)
	// ListEmployees returns every employee address, ordered by first report.
	ListEmployees(ctx context.Context) ([]string, error)
	ListDayReports(ctx context.Context, employeeAddress string) ([]domain.DayReport, error)
}

// SnapshotExporter renders a frozen view into a downloadable document.
type SnapshotExporter interface {
	Generate(s *domain.Snapshot, w io.Writer) error
}
