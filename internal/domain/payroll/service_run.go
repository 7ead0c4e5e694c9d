package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunPayroll calculates and stores results for every active employee.
// Employees that cannot be calculated are counted as warnings and the run
// is marked partial instead of failing. The run is stored as processing
// until every result is saved; a store error or cancellation marks it failed.
func (s *Service) RunPayroll(ctx context.Context, period string) (RunSummary, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return RunSummary{}, ErrPeriodRequired
	}

	rates, err := s.Rates(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	profiles, err := s.store.ListActiveEmployeeProfiles(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load employees: %w", err)
	}

	run := Run{ID: uuid.NewString(), Period: period, Status: RunStatusProcessing, CreatedAt: s.now().UTC()}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return RunSummary{}, fmt.Errorf("create run: %w", err)
	}

	summary := RunSummary{Run: run, Warnings: map[string]int{}}
	summary.Run.Status = RunStatusCompleted
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			s.failRun(ctx, run.ID, err)
			return RunSummary{}, err
		}

		calc, warnings, err := s.calculate(ctx, profile, rates)
		if err != nil {
			slog.Error("payroll calculation failed", "runId", run.ID, "employeeId", profile.EmployeeID, "err", err)
			summary.Warnings[WarningFailed]++
			summary.Run.Status = RunStatusPartial
			continue
		}

		result := Result{
			RunID:       run.ID,
			EmployeeID:  profile.EmployeeID,
			FullName:    profile.FullName,
			Calculation: calc,
			Warnings:    warnings,
			CreatedAt:   run.CreatedAt,
		}
		if err := s.store.UpsertResult(ctx, result); err != nil {
			err = fmt.Errorf("save result for %s: %w", profile.EmployeeID, err)
			s.failRun(ctx, run.ID, err)
			return RunSummary{}, err
		}

		for _, w := range warnings {
			summary.Warnings[w]++
		}
		summary.EmployeeCount++
		summary.TotalGross += calc.GrossSalary
		summary.TotalDeductions += calc.TotalDeductions
		summary.TotalNet += calc.NetSalary
	}

	if err := s.store.UpdateRunStatus(ctx, run.ID, summary.Run.Status); err != nil {
		return RunSummary{}, fmt.Errorf("update run status: %w", err)
	}

	slog.Info("payroll run finished",
		"runId", run.ID,
		"period", period,
		"status", summary.Run.Status,
		"employees", summary.EmployeeCount,
		"totalNet", summary.TotalNet,
	)
	return summary, nil
}

// failRun marks the run failed even when ctx is already cancelled.
func (s *Service) failRun(ctx context.Context, runID string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.UpdateRunStatus(ctx, runID, RunStatusFailed); err != nil {
		slog.Error("mark payroll run failed", "runId", runID, "cause", cause, "err", err)
		return
	}
	slog.Warn("payroll run failed", "runId", runID, "err", cause)
}

func (s *Service) GetRun(ctx context.Context, runID string) (Run, error) {
	return s.store.GetRun(ctx, runID)
}

func (s *Service) ListResults(ctx context.Context, runID string) ([]Result, error) {
	if _, err := s.store.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.store.ListResults(ctx, runID)
}
