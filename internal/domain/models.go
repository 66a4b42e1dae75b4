package domain

import "time"

// Literal defaults shown in the form before the visitor edits anything.
const (
	DefaultEmployeeAddress = "0xd4f52aa7c26b0169f942939d7ee6d72e2e16a4a1"
	DefaultWorkingTime     = "1498545234"
)

// Inputs holds the two text fields of the create form exactly as typed.
// WorkingTime is kept as text: nothing between the browser and the
// reports collaborator interprets it.
type Inputs struct {
	EmployeeAddress string
	WorkingTime     string
}

// DefaultInputs returns the literal defaults.
func DefaultInputs() Inputs {
	return Inputs{
		EmployeeAddress: DefaultEmployeeAddress,
		WorkingTime:     DefaultWorkingTime,
	}
}

// View is everything a render needs. The four report fields are empty
// strings until the first create action.
type View struct {
	Inputs     Inputs
	HasReports bool
	Employees  string
	DayReports string
	GoodPoints string
	BadPoints  string
}

// Snapshot is a rendered view frozen for export.
type Snapshot struct {
	View        View
	GeneratedAt time.Time
}

// DayReport is a single report an employee filed for a working time.
type DayReport struct {
	ID              int64
	EmployeeAddress string
	WorkingTime     time.Time // stored as unix seconds
	CreatedAt       time.Time
}
