package payroll

import "time"

// BPJSRates holds the six contribution percentages applied to gross salary.
type BPJSRates struct {
	KesehatanEmployee float64 `json:"kesehatanEmployee"`
	KesehatanEmployer float64 `json:"kesehatanEmployer"`
	JHTEmployee       float64 `json:"jhtEmployee"`
	JHTEmployer       float64 `json:"jhtEmployer"`
	JPEmployee        float64 `json:"jpEmployee"`
	JPEmployer        float64 `json:"jpEmployer"`
}

type BPJSBreakdown struct {
	Kesehatan float64 `json:"kesehatan"`
	JHT       float64 `json:"jht"`
	JP        float64 `json:"jp"`
	Total     float64 `json:"total"`
}

type BPJSCalculation struct {
	Employee BPJSBreakdown `json:"employee"`
	Employer BPJSBreakdown `json:"employer"`
}

type Component struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	AmountType string  `json:"amountType"`
	Amount     float64 `json:"amount"`
	Taxable    bool    `json:"taxable"`
}

// ComponentInput is a component as assigned to one employee. A non-nil
// CustomAmount replaces the computed amount, zero included.
type ComponentInput struct {
	Component
	CustomAmount *float64 `json:"customAmount,omitempty"`
}

type AllowanceLine struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Taxable bool    `json:"taxable"`
}

type DeductionLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Calculation struct {
	BaseSalary      float64         `json:"baseSalary"`
	Allowances      []AllowanceLine `json:"allowances"`
	TotalAllowances float64         `json:"totalAllowances"`
	GrossSalary     float64         `json:"grossSalary"`
	BPJSEmployee    BPJSBreakdown   `json:"bpjsEmployee"`
	BPJSEmployer    BPJSBreakdown   `json:"bpjsEmployer"`
	TaxableIncome   float64         `json:"taxableIncome"`
	PPh21Monthly    float64         `json:"pph21Monthly"`
	Deductions      []DeductionLine `json:"deductions"`
	TotalDeductions float64         `json:"totalDeductions"`
	NetSalary       float64         `json:"netSalary"`
}

type TaxBracket struct {
	Limit float64
	Rate  float64
}

// PreviewInput is an ad-hoc calculation request with caller supplied data.
type PreviewInput struct {
	BaseSalary float64          `json:"baseSalary"`
	Components []ComponentInput `json:"components"`
	Rates      *BPJSRates       `json:"bpjsRates,omitempty"`
	PTKPStatus string           `json:"ptkpStatus"`
	UsePPh21   bool             `json:"usePph21"`
}

type EmployeeProfile struct {
	EmployeeID  string
	FullName    string
	Email       string
	SalaryPlain *float64
	SalaryEnc   []byte
	PTKPStatus  string
	UsePPh21    bool
	Active      bool
}

type Run struct {
	ID        string    `json:"id"`
	Period    string    `json:"period"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Result struct {
	RunID       string      `json:"runId"`
	EmployeeID  string      `json:"employeeId"`
	FullName    string      `json:"fullName"`
	Calculation Calculation `json:"calculation"`
	Warnings    []string    `json:"warnings,omitempty"`
	PayslipPath string      `json:"payslipPath,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type RunSummary struct {
	Run             Run            `json:"run"`
	EmployeeCount   int            `json:"employeeCount"`
	TotalGross      float64        `json:"totalGross"`
	TotalDeductions float64        `json:"totalDeductions"`
	TotalNet        float64        `json:"totalNet"`
	Warnings        map[string]int `json:"warnings"`
}
