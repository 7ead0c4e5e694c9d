package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"geoattend/internal/domain/payroll"
)

var defaultComponents = []payroll.Component{
	{Name: "Transport", Type: payroll.ComponentTypeAllowance, AmountType: payroll.AmountTypeFixed, Amount: 500_000, Taxable: true},
	{Name: "Meal", Type: payroll.ComponentTypeAllowance, AmountType: payroll.AmountTypeFixed, Amount: 600_000, Taxable: false},
	{Name: "Position", Type: payroll.ComponentTypeAllowance, AmountType: payroll.AmountTypePercentage, Amount: 10, Taxable: true},
	{Name: "Cooperative", Type: payroll.ComponentTypeDeduction, AmountType: payroll.AmountTypeFixed, Amount: 100_000},
}

// Seed inserts statutory BPJS rates and a starter set of pay components on
// an empty database. Existing rows are left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureBPJSSettings(ctx, pool); err != nil {
		return err
	}
	return ensureComponents(ctx, pool)
}

func ensureBPJSSettings(ctx context.Context, pool *pgxpool.Pool) error {
	r := payroll.DefaultBPJSRates()
	_, err := pool.Exec(ctx, `
    INSERT INTO bpjs_settings (id, kesehatan_employee, kesehatan_employer, tk_jht_employee, tk_jht_employer, tk_jp_employee, tk_jp_employer)
    VALUES (1,$1,$2,$3,$4,$5,$6)
    ON CONFLICT (id) DO NOTHING
  `, r.KesehatanEmployee, r.KesehatanEmployer, r.JHTEmployee, r.JHTEmployer, r.JPEmployee, r.JPEmployer)
	return err
}

func ensureComponents(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM pay_components").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, c := range defaultComponents {
		_, err := pool.Exec(ctx, `
      INSERT INTO pay_components (name, component_type, amount_type, amount, is_taxable)
      VALUES ($1,$2,$3,$4,$5)
    `, c.Name, c.Type, c.AmountType, c.Amount, c.Taxable)
		if err != nil {
			return err
		}
	}
	return nil
}
