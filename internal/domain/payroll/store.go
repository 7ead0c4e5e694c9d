package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// validID reports whether id can be compared against a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) ListComponents(ctx context.Context) ([]Component, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, component_type, amount_type, amount, is_taxable
    FROM pay_components
    ORDER BY component_type, name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.AmountType, &c.Amount, &c.Taxable); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (s *Store) GetComponent(ctx context.Context, componentID string) (Component, error) {
	if !validID(componentID) {
		return Component{}, ErrComponentNotFound
	}
	var c Component
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, component_type, amount_type, amount, is_taxable
    FROM pay_components
    WHERE id = $1
  `, componentID).Scan(&c.ID, &c.Name, &c.Type, &c.AmountType, &c.Amount, &c.Taxable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Component{}, ErrComponentNotFound
	}
	return c, err
}

func (s *Store) CreateComponent(ctx context.Context, component Component) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO pay_components (name, component_type, amount_type, amount, is_taxable)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, component.Name, component.Type, component.AmountType, component.Amount, component.Taxable).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateComponent(ctx context.Context, component Component) error {
	if !validID(component.ID) {
		return ErrComponentNotFound
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE pay_components
    SET name = $2, component_type = $3, amount_type = $4, amount = $5, is_taxable = $6, updated_at = now()
    WHERE id = $1
  `, component.ID, component.Name, component.Type, component.AmountType, component.Amount, component.Taxable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrComponentNotFound
	}
	return nil
}

func (s *Store) DeleteComponent(ctx context.Context, componentID string) error {
	if !validID(componentID) {
		return ErrComponentNotFound
	}
	tag, err := s.DB.Exec(ctx, "DELETE FROM pay_components WHERE id = $1", componentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrComponentNotFound
	}
	return nil
}

func (s *Store) GetBPJSRates(ctx context.Context) (BPJSRates, bool, error) {
	var r BPJSRates
	err := s.DB.QueryRow(ctx, `
    SELECT kesehatan_employee, kesehatan_employer, tk_jht_employee, tk_jht_employer, tk_jp_employee, tk_jp_employer
    FROM bpjs_settings
    WHERE id = 1
  `).Scan(&r.KesehatanEmployee, &r.KesehatanEmployer, &r.JHTEmployee, &r.JHTEmployer, &r.JPEmployee, &r.JPEmployer)
	if errors.Is(err, pgx.ErrNoRows) {
		return BPJSRates{}, false, nil
	}
	if err != nil {
		return BPJSRates{}, false, err
	}
	return r, true, nil
}

func (s *Store) UpsertBPJSRates(ctx context.Context, rates BPJSRates) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO bpjs_settings (id, kesehatan_employee, kesehatan_employer, tk_jht_employee, tk_jht_employer, tk_jp_employee, tk_jp_employer)
    VALUES (1,$1,$2,$3,$4,$5,$6)
    ON CONFLICT (id) DO UPDATE SET
      kesehatan_employee = EXCLUDED.kesehatan_employee,
      kesehatan_employer = EXCLUDED.kesehatan_employer,
      tk_jht_employee = EXCLUDED.tk_jht_employee,
      tk_jht_employer = EXCLUDED.tk_jht_employer,
      tk_jp_employee = EXCLUDED.tk_jp_employee,
      tk_jp_employer = EXCLUDED.tk_jp_employer,
      updated_at = now()
  `, rates.KesehatanEmployee, rates.KesehatanEmployer, rates.JHTEmployee, rates.JHTEmployer, rates.JPEmployee, rates.JPEmployer)
	return err
}

const profileColumns = `id, full_name, COALESCE(email, ''), base_salary, base_salary_enc, COALESCE(ptkp_status, ''), use_pph21, active`

func scanProfile(row pgx.Row) (EmployeeProfile, error) {
	var p EmployeeProfile
	err := row.Scan(&p.EmployeeID, &p.FullName, &p.Email, &p.SalaryPlain, &p.SalaryEnc, &p.PTKPStatus, &p.UsePPh21, &p.Active)
	return p, err
}

func (s *Store) GetEmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	if !validID(employeeID) {
		return EmployeeProfile{}, ErrEmployeeNotFound
	}
	p, err := scanProfile(s.DB.QueryRow(ctx, "SELECT "+profileColumns+" FROM employees WHERE id = $1", employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeProfile{}, ErrEmployeeNotFound
	}
	return p, err
}

func (s *Store) ListActiveEmployeeProfiles(ctx context.Context) ([]EmployeeProfile, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+profileColumns+" FROM employees WHERE active = true ORDER BY full_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListEmployeeComponents(ctx context.Context, employeeID string) ([]ComponentInput, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.id, c.name, c.component_type, c.amount_type, c.amount, c.is_taxable, ec.custom_amount
    FROM employee_components ec
    JOIN pay_components c ON ec.component_id = c.id
    WHERE ec.employee_id = $1
    ORDER BY ec.sort_order, c.name
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComponentInput
	for rows.Next() {
		var in ComponentInput
		if err := rows.Scan(&in.ID, &in.Name, &in.Type, &in.AmountType, &in.Amount, &in.Taxable, &in.CustomAmount); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) CreateRun(ctx context.Context, run Run) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO payroll_runs (id, period, status, created_at)
    VALUES ($1,$2,$3,$4)
  `, run.ID, run.Period, run.Status, run.CreatedAt)
	return err
}

func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	if !validID(runID) {
		return Run{}, ErrRunNotFound
	}
	var run Run
	err := s.DB.QueryRow(ctx, `
    SELECT id, period, status, created_at
    FROM payroll_runs
    WHERE id = $1
  `, runID).Scan(&run.ID, &run.Period, &run.Status, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE payroll_runs SET status = $2 WHERE id = $1", runID, status)
	return err
}

func (s *Store) UpsertResult(ctx context.Context, result Result) error {
	calcJSON, err := json.Marshal(result.Calculation)
	if err != nil {
		return err
	}
	warningsJSON, err := json.Marshal(result.Warnings)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO payroll_results (run_id, employee_id, full_name, gross, deductions, net, calculation, warnings, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (run_id, employee_id) DO UPDATE SET
      full_name = EXCLUDED.full_name,
      gross = EXCLUDED.gross,
      deductions = EXCLUDED.deductions,
      net = EXCLUDED.net,
      calculation = EXCLUDED.calculation,
      warnings = EXCLUDED.warnings
  `, result.RunID, result.EmployeeID, result.FullName,
		result.Calculation.GrossSalary, result.Calculation.TotalDeductions, result.Calculation.NetSalary,
		calcJSON, warningsJSON, result.CreatedAt)
	return err
}

const resultColumns = `run_id, employee_id, full_name, calculation, warnings, COALESCE(payslip_path, ''), created_at`

func scanResult(row pgx.Row) (Result, error) {
	var r Result
	var calcJSON, warningsJSON []byte
	if err := row.Scan(&r.RunID, &r.EmployeeID, &r.FullName, &calcJSON, &warningsJSON, &r.PayslipPath, &r.CreatedAt); err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal(calcJSON, &r.Calculation); err != nil {
		return Result{}, err
	}
	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &r.Warnings); err != nil {
			return Result{}, fmt.Errorf("decode warnings: %w", err)
		}
	}
	return r, nil
}

func (s *Store) ListResults(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+resultColumns+" FROM payroll_results WHERE run_id = $1 ORDER BY full_name", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetResult(ctx context.Context, runID, employeeID string) (Result, error) {
	if !validID(runID) || !validID(employeeID) {
		return Result{}, ErrResultNotFound
	}
	r, err := scanResult(s.DB.QueryRow(ctx, "SELECT "+resultColumns+" FROM payroll_results WHERE run_id = $1 AND employee_id = $2", runID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	return r, err
}

func (s *Store) UpdatePayslipPath(ctx context.Context, runID, employeeID, path string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE payroll_results
    SET payslip_path = $3
    WHERE run_id = $1 AND employee_id = $2
  `, runID, employeeID, path)
	return err
}
