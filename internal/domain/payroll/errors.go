package payroll

import "errors"

var (
	ErrUnknownPTKPStatus = errors.New("unknown ptkp status")
	ErrNegativeSalary    = errors.New("base salary must not be negative")
	ErrRateOutOfRange    = errors.New("bpjs rate must be between 0 and 100")
	ErrInvalidComponent  = errors.New("invalid pay component")
	ErrComponentNotFound = errors.New("pay component not found")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrRunNotFound       = errors.New("payroll run not found")
	ErrResultNotFound    = errors.New("payroll result not found")
	ErrPeriodRequired    = errors.New("payroll period is required")
	ErrMissingSalary     = errors.New("employee has no base salary")
)
