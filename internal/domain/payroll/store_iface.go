package payroll

import "context"

type StoreAPI interface {
	ListComponents(ctx context.Context) ([]Component, error)
	GetComponent(ctx context.Context, componentID string) (Component, error)
	CreateComponent(ctx context.Context, component Component) (string, error)
	UpdateComponent(ctx context.Context, component Component) error
	DeleteComponent(ctx context.Context, componentID string) error
	GetBPJSRates(ctx context.Context) (BPJSRates, bool, error)
	UpsertBPJSRates(ctx context.Context, rates BPJSRates) error
	GetEmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error)
	ListActiveEmployeeProfiles(ctx context.Context) ([]EmployeeProfile, error)
	ListEmployeeComponents(ctx context.Context, employeeID string) ([]ComponentInput, error)
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	UpdateRunStatus(ctx context.Context, runID, status string) error
	UpsertResult(ctx context.Context, result Result) error
	ListResults(ctx context.Context, runID string) ([]Result, error)
	GetResult(ctx context.Context, runID, employeeID string) (Result, error)
	UpdatePayslipPath(ctx context.Context, runID, employeeID, path string) error
}
