// Package form holds the create-and-display component behind the reports
// page: two text inputs, a create action, and four derived read-only fields.
package form

import (
	"context"
	"sync"

	"github.com/csg33k/workreports/internal/domain"
	"github.com/csg33k/workreports/internal/ports"
)

// State is one visitor's form. reports stays nil until the first Create and
// afterwards always belongs to the most recently submitted inputs.
type State struct {
	mu      sync.Mutex
	opener  ports.ReportsOpener
	inputs  domain.Inputs
	reports ports.Reports
}

// New returns a form with the given initial inputs. Empty fields fall back
// to the literal defaults.
func New(opener ports.ReportsOpener, initial domain.Inputs) *State {
	def := domain.DefaultInputs()
	if initial.EmployeeAddress == "" {
		initial.EmployeeAddress = def.EmployeeAddress
	}
	if initial.WorkingTime == "" {
		initial.WorkingTime = def.WorkingTime
	}
	return &State{opener: opener, inputs: initial}
}

// Create opens a new reports handle from the submitted text and replaces
// the current one. Inputs are not validated. If the opener fails, the error
// is returned as is and the previous handle stays in place.
func (s *State) Create(ctx context.Context, in domain.Inputs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = in
	r, err := s.opener.Open(ctx, in.EmployeeAddress, in.WorkingTime)
	if err != nil {
		return err
	}
	s.reports = r
	return nil
}

// Inputs returns the values the text fields are bound to.
func (s *State) Inputs() domain.Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

func (s *State) HasReports() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports != nil
}

// View reads every accessor of the current handle. Nothing is cached
// between calls.
func (s *State) View(ctx context.Context) (domain.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := domain.View{Inputs: s.inputs}
	if s.reports == nil {
		return v, nil
	}
	v.HasReports = true
	fields := []struct {
		dst  *string
		read func(context.Context) (string, error)
	}{
		{&v.Employees, s.reports.Employees},
		{&v.DayReports, s.reports.DayReports},
		{&v.GoodPoints, s.reports.GoodPoints},
		{&v.BadPoints, s.reports.BadPoints},
	}
	for _, f := range fields {
		val, err := f.read(ctx)
		if err != nil {
			return domain.View{}, err
		}
		*f.dst = val
	}
	return v, nil
}
