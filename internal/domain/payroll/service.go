package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cryptoutil "geoattend/internal/platform/crypto"
)

type Options struct {
	PayslipDir        string
	DefaultPTKPStatus string
}

type Service struct {
	store       StoreAPI
	crypto      *cryptoutil.Service
	payslipDir  string
	defaultPTKP string
	now         func() time.Time
}

func NewService(store StoreAPI, crypto *cryptoutil.Service, opts Options) *Service {
	defaultPTKP, err := ParsePTKPStatus(opts.DefaultPTKPStatus)
	if err != nil {
		defaultPTKP = DefaultPTKPStatus
	}
	payslipDir := opts.PayslipDir
	if payslipDir == "" {
		payslipDir = "storage/payslips"
	}
	return &Service{
		store:       store,
		crypto:      crypto,
		payslipDir:  payslipDir,
		defaultPTKP: defaultPTKP,
		now:         time.Now,
	}
}

// Rates returns the stored BPJS rates or the statutory defaults.
func (s *Service) Rates(ctx context.Context) (BPJSRates, error) {
	rates, ok, err := s.store.GetBPJSRates(ctx)
	if err != nil {
		return BPJSRates{}, fmt.Errorf("load bpjs rates: %w", err)
	}
	if !ok {
		return DefaultBPJSRates(), nil
	}
	return rates, nil
}

func (s *Service) UpdateRates(ctx context.Context, rates BPJSRates) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	if err := s.store.UpsertBPJSRates(ctx, rates); err != nil {
		return fmt.Errorf("save bpjs rates: %w", err)
	}
	slog.Info("bpjs rates updated", "rates", rates)
	return nil
}

func (s *Service) ListComponents(ctx context.Context) ([]Component, error) {
	return s.store.ListComponents(ctx)
}

func (s *Service) GetComponent(ctx context.Context, componentID string) (Component, error) {
	return s.store.GetComponent(ctx, componentID)
}

func (s *Service) CreateComponent(ctx context.Context, c Component) (Component, error) {
	c, err := normalizeComponent(c)
	if err != nil {
		return Component{}, err
	}
	id, err := s.store.CreateComponent(ctx, c)
	if err != nil {
		return Component{}, fmt.Errorf("create component: %w", err)
	}
	c.ID = id
	return c, nil
}

func (s *Service) UpdateComponent(ctx context.Context, c Component) (Component, error) {
	c, err := normalizeComponent(c)
	if err != nil {
		return Component{}, err
	}
	if err := s.store.UpdateComponent(ctx, c); err != nil {
		return Component{}, err
	}
	return c, nil
}

func (s *Service) DeleteComponent(ctx context.Context, componentID string) error {
	return s.store.DeleteComponent(ctx, componentID)
}

func normalizeComponent(c Component) (Component, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	c.AmountType = strings.ToLower(strings.TrimSpace(c.AmountType))
	switch {
	case c.Name == "":
		return Component{}, fmt.Errorf("%w: name is required", ErrInvalidComponent)
	case c.Type != ComponentTypeAllowance && c.Type != ComponentTypeDeduction:
		return Component{}, fmt.Errorf("%w: type must be allowance or deduction", ErrInvalidComponent)
	case c.AmountType != AmountTypeFixed && c.AmountType != AmountTypePercentage:
		return Component{}, fmt.Errorf("%w: amountType must be fixed or percentage", ErrInvalidComponent)
	case c.Amount < 0:
		return Component{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidComponent)
	case c.AmountType == AmountTypePercentage && c.Amount > 100:
		return Component{}, fmt.Errorf("%w: percentage must not exceed 100", ErrInvalidComponent)
	}
	return c, nil
}

// Preview runs the engine on caller supplied data. Unlike the engine it
// rejects unknown PTKP codes and negative salaries.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (Calculation, error) {
	if in.BaseSalary < 0 {
		return Calculation{}, ErrNegativeSalary
	}
	status := s.defaultPTKP
	if strings.TrimSpace(in.PTKPStatus) != "" {
		parsed, err := ParsePTKPStatus(in.PTKPStatus)
		if err != nil {
			return Calculation{}, err
		}
		status = parsed
	}

	var rates BPJSRates
	if in.Rates != nil {
		if err := in.Rates.Validate(); err != nil {
			return Calculation{}, err
		}
		rates = *in.Rates
	} else {
		stored, err := s.Rates(ctx)
		if err != nil {
			return Calculation{}, err
		}
		rates = stored
	}

	components := make([]ComponentInput, 0, len(in.Components))
	for _, c := range in.Components {
		normalized, err := normalizeComponent(c.Component)
		if err != nil {
			return Calculation{}, err
		}
		components = append(components, ComponentInput{Component: normalized, CustomAmount: c.CustomAmount})
	}

	return CalculateEnhancedPayroll(in.BaseSalary, components, rates, status, in.UsePPh21), nil
}

// CalculateForEmployee loads the stored profile, assigned components and
// rates for one employee. The returned warnings are non-fatal findings.
func (s *Service) CalculateForEmployee(ctx context.Context, employeeID string) (EmployeeProfile, Calculation, []string, error) {
	profile, err := s.store.GetEmployeeProfile(ctx, employeeID)
	if err != nil {
		return EmployeeProfile{}, Calculation{}, nil, err
	}
	rates, err := s.Rates(ctx)
	if err != nil {
		return EmployeeProfile{}, Calculation{}, nil, err
	}
	calc, warnings, err := s.calculate(ctx, profile, rates)
	if err != nil {
		return EmployeeProfile{}, Calculation{}, nil, err
	}
	return profile, calc, warnings, nil
}

func (s *Service) calculate(ctx context.Context, profile EmployeeProfile, rates BPJSRates) (Calculation, []string, error) {
	var warnings []string

	base, err := s.baseSalary(profile)
	if err != nil {
		return Calculation{}, nil, err
	}

	status := s.defaultPTKP
	if strings.TrimSpace(profile.PTKPStatus) != "" {
		parsed, err := ParsePTKPStatus(profile.PTKPStatus)
		if err != nil {
			slog.Warn("unknown ptkp status, using default", "employeeId", profile.EmployeeID, "status", profile.PTKPStatus, "default", s.defaultPTKP)
			warnings = append(warnings, WarningUnknownPTKP)
		} else {
			status = parsed
		}
	}

	components, err := s.store.ListEmployeeComponents(ctx, profile.EmployeeID)
	if err != nil {
		return Calculation{}, nil, fmt.Errorf("load components for %s: %w", profile.EmployeeID, err)
	}

	calc := CalculateEnhancedPayroll(base, components, rates, status, profile.UsePPh21)
	if calc.NetSalary < 0 {
		warnings = append(warnings, WarningNegativeNet)
	}
	return calc, warnings, nil
}

func (s *Service) baseSalary(profile EmployeeProfile) (float64, error) {
	if len(profile.SalaryEnc) > 0 {
		amount, err := s.crypto.DecryptAmount(profile.SalaryEnc)
		if err != nil {
			return 0, fmt.Errorf("decrypt salary for %s: %w", profile.EmployeeID, err)
		}
		return amount, nil
	}
	if profile.SalaryPlain != nil {
		return *profile.SalaryPlain, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingSalary, profile.EmployeeID)
}

// IsNotFound reports whether err is one of the payroll not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrComponentNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrResultNotFound)
}
