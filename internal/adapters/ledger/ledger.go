// Package ledger is the reports collaborator: opening a handle files a day
// report for the employee, and the handle's accessors read the tallies
// back from the repository.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/csg33k/workreports/internal/domain"
	"github.com/csg33k/workreports/internal/ports"
)

var (
	ErrInvalidAddress     = errors.New("ledger: employee address is empty")
	ErrInvalidWorkingTime = errors.New("ledger: working time is not a unix timestamp")
)

// Policy decides which reports earn a good point. A report whose local time
// of day is at or before Cutoff is on time.
type Policy struct {
	Cutoff   time.Duration // offset from local midnight
	Location *time.Location
}

// DefaultPolicy is 09:00 UTC.
func DefaultPolicy() Policy {
	return Policy{Cutoff: 9 * time.Hour, Location: time.UTC}
}

// OnTime reports whether t counts as a good point.
func (p Policy) OnTime(t time.Time) bool {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	sinceMidnight := time.Duration(lt.Hour())*time.Hour +
		time.Duration(lt.Minute())*time.Minute +
		time.Duration(lt.Second())*time.Second
	return sinceMidnight <= p.Cutoff
}

type Ledger struct {
	repo   ports.DayReportRepository
	policy Policy
}

func New(repo ports.DayReportRepository, policy Policy) *Ledger {
	return &Ledger{repo: repo, policy: policy}
}

// Open files a day report for (employeeAddress, workingTime) and returns a
// handle bound to that employee. Filing the same pair twice is a no-op.
func (l *Ledger) Open(ctx context.Context, employeeAddress, workingTime string) (ports.Reports, error) {
	addr := strings.TrimSpace(employeeAddress)
	if addr == "" {
		return nil, ErrInvalidAddress
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(workingTime), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWorkingTime, workingTime)
	}
	d := &domain.DayReport{EmployeeAddress: addr, WorkingTime: time.Unix(unix, 0).UTC()}
	if _, err := l.repo.RecordDayReport(ctx, d); err != nil {
		return nil, fmt.Errorf("record day report: %w", err)
	}
	return &handle{ledger: l, employee: addr}, nil
}

type handle struct {
	ledger   *Ledger
	employee string
}

func (h *handle) Employees(ctx context.Context) (string, error) {
	emps, err := h.ledger.repo.ListEmployees(ctx)
	if err != nil {
		return "", fmt.Errorf("list employees: %w", err)
	}
	return strings.Join(emps, ", "), nil
}

func (h *handle) DayReports(ctx context.Context) (string, error) {
	reps, err := h.reports(ctx)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(len(reps)), nil
}

func (h *handle) GoodPoints(ctx context.Context) (string, error) {
	good, _, err := h.points(ctx)
	return good, err
}

func (h *handle) BadPoints(ctx context.Context) (string, error) {
	_, bad, err := h.points(ctx)
	return bad, err
}

func (h *handle) reports(ctx context.Context) ([]domain.DayReport, error) {
	reps, err := h.ledger.repo.ListDayReports(ctx, h.employee)
	if err != nil {
		return nil, fmt.Errorf("list day reports: %w", err)
	}
	return reps, nil
}

func (h *handle) points(ctx context.Context) (good, bad string, err error) {
	reps, err := h.reports(ctx)
	if err != nil {
		return "", "", err
	}
	var g, b int
	for _, d := range reps {
		if h.ledger.policy.OnTime(d.WorkingTime) {
			g++
		} else {
			b++
		}
	}
	return strconv.Itoa(g), strconv.Itoa(b), nil
}
