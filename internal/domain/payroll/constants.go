package payroll

const (
	ComponentTypeAllowance = "allowance"
	ComponentTypeDeduction = "deduction"

	AmountTypeFixed      = "fixed"
	AmountTypePercentage = "percentage"

	PTKPSingle0  = "TK/0"
	PTKPSingle1  = "TK/1"
	PTKPSingle2  = "TK/2"
	PTKPSingle3  = "TK/3"
	PTKPMarried0 = "K/0"
	PTKPMarried1 = "K/1"
	PTKPMarried2 = "K/2"
	PTKPMarried3 = "K/3"

	DefaultPTKPStatus = PTKPSingle0

	DeductionBPJSKesehatan = "BPJS Kesehatan"
	DeductionBPJSJHT       = "BPJS TK JHT"
	DeductionBPJSJP        = "BPJS TK JP"
	DeductionPPh21         = "PPh 21"

	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusPartial    = "partial"
	RunStatusFailed     = "failed"

	WarningNegativeNet = "negative_net"
	WarningUnknownPTKP = "unknown_ptkp_status"
	WarningFailed      = "calculation_failed"
)
