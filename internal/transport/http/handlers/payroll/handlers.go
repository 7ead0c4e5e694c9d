package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"geoattend/internal/domain/audit"
	"geoattend/internal/domain/payroll"
	"geoattend/internal/platform/jobs"
	"geoattend/internal/platform/metrics"
	"geoattend/internal/requestctx"
	"geoattend/internal/transport/http/api"
	"geoattend/internal/transport/http/middleware"
	"geoattend/internal/transport/http/shared"
)

const (
	endpointRunPayroll = "payroll.run"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Handler struct {
	Service     *payroll.Service
	Jobs        *jobs.Service
	Metrics     *metrics.Collector
	Idempotency middleware.IdempotencyChecker
	Audit       AuditRecorder
}

func NewHandler(service *payroll.Service, jobsSvc *jobs.Service, collector *metrics.Collector, idem middleware.IdempotencyChecker, auditor AuditRecorder) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Metrics: collector, Idempotency: idem, Audit: auditor}
}

// record writes an audit event. Failures are logged and never fail the request.
func (h *Handler) record(r *http.Request, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	entry := audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         middleware.ClientIP(r),
		Before:     before,
		After:      after,
	}
	if err := h.Audit.Record(r.Context(), entry); err != nil {
		requestctx.Logger(r.Context()).Warn("audit record failed", "action", action, "err", err)
	}
}

type runPayload struct {
	Period string `json:"period"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Get("/components", h.handleListComponents)
		r.Post("/components", h.handleCreateComponent)
		r.Put("/components/{componentID}", h.handleUpdateComponent)
		r.Delete("/components/{componentID}", h.handleDeleteComponent)
		r.Get("/settings/bpjs", h.handleGetRates)
		r.Put("/settings/bpjs", h.handleUpdateRates)
		r.Get("/employees/{employeeID}/calculation", h.handleEmployeeCalculation)
		r.Post("/runs", h.handleRunPayroll)
		r.Get("/runs/{runID}", h.handleGetRun)
		r.Get("/runs/{runID}/results", h.handleListResults)
		r.Get("/runs/{runID}/register.xlsx", h.handleExportRegister)
		r.Get("/runs/{runID}/payslips/{employeeID}.pdf", h.handleDownloadPayslip)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload payroll.PreviewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.NonNegative("baseSalary", payload.BaseSalary)
	for _, c := range payload.Components {
		if c.CustomAmount != nil {
			v.NonNegative("components.customAmount", *c.CustomAmount)
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	calc, err := h.Service.Preview(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, "payroll_calculate_failed", "failed to calculate payroll")
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCalculation()
	}
	api.Success(w, calc, reqID)
}

func (h *Handler) handleListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.Service.ListComponents(r.Context())
	if err != nil {
		h.fail(w, r, err, "payroll_components_failed", "failed to list components")
		return
	}
	if components == nil {
		components = []payroll.Component{}
	}
	api.Success(w, components, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateComponent(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	payload, ok := decodeComponent(w, r)
	if !ok {
		return
	}
	created, err := h.Service.CreateComponent(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, "payroll_component_create_failed", "failed to create component")
		return
	}
	h.record(r, audit.ActionComponentCreate, "pay_component", created.ID, nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	payload, ok := decodeComponent(w, r)
	if !ok {
		return
	}
	payload.ID = chi.URLParam(r, "componentID")
	before, err := h.Service.GetComponent(r.Context(), payload.ID)
	if err != nil {
		h.fail(w, r, err, "payroll_component_update_failed", "failed to update component")
		return
	}
	updated, err := h.Service.UpdateComponent(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, "payroll_component_update_failed", "failed to update component")
		return
	}
	h.record(r, audit.ActionComponentUpdate, "pay_component", updated.ID, before, updated)
	api.Success(w, updated, reqID)
}

func decodeComponent(w http.ResponseWriter, r *http.Request) (payroll.Component, bool) {
	reqID := middleware.GetRequestID(r.Context())
	var payload payroll.Component
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return payroll.Component{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("type", payload.Type, "is required")
	v.Enum("type", payload.Type, []string{payroll.ComponentTypeAllowance, payroll.ComponentTypeDeduction}, "must be allowance or deduction")
	v.Required("amountType", payload.AmountType, "is required")
	v.Enum("amountType", payload.AmountType, []string{payroll.AmountTypeFixed, payroll.AmountTypePercentage}, "must be fixed or percentage")
	v.NonNegative("amount", payload.Amount)
	if strings.EqualFold(strings.TrimSpace(payload.AmountType), payroll.AmountTypePercentage) {
		v.Percent("amount", payload.Amount)
	}
	if v.Reject(w, reqID) {
		return payroll.Component{}, false
	}
	return payload, true
}

func (h *Handler) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	before, err := h.Service.GetComponent(r.Context(), componentID)
	if err != nil {
		h.fail(w, r, err, "payroll_component_delete_failed", "failed to delete component")
		return
	}
	if err := h.Service.DeleteComponent(r.Context(), componentID); err != nil {
		h.fail(w, r, err, "payroll_component_delete_failed", "failed to delete component")
		return
	}
	h.record(r, audit.ActionComponentDelete, "pay_component", componentID, before, nil)
	api.Success(w, map[string]string{"id": componentID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Service.Rates(r.Context())
	if err != nil {
		h.fail(w, r, err, "bpjs_settings_failed", "failed to load bpjs settings")
		return
	}
	api.Success(w, rates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateRates(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload payroll.BPJSRates
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Percent("kesehatanEmployee", payload.KesehatanEmployee)
	v.Percent("kesehatanEmployer", payload.KesehatanEmployer)
	v.Percent("jhtEmployee", payload.JHTEmployee)
	v.Percent("jhtEmployer", payload.JHTEmployer)
	v.Percent("jpEmployee", payload.JPEmployee)
	v.Percent("jpEmployer", payload.JPEmployer)
	if v.Reject(w, reqID) {
		return
	}

	before, err := h.Service.Rates(r.Context())
	if err != nil {
		h.fail(w, r, err, "bpjs_settings_update_failed", "failed to update bpjs settings")
		return
	}
	if err := h.Service.UpdateRates(r.Context(), payload); err != nil {
		h.fail(w, r, err, "bpjs_settings_update_failed", "failed to update bpjs settings")
		return
	}
	h.record(r, audit.ActionRatesUpdate, "bpjs_settings", "1", before, payload)
	api.Success(w, payload, reqID)
}

type employeeCalculationResponse struct {
	EmployeeID  string              `json:"employeeId"`
	FullName    string              `json:"fullName"`
	Calculation payroll.Calculation `json:"calculation"`
	Warnings    []string            `json:"warnings,omitempty"`
}

func (h *Handler) handleEmployeeCalculation(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	profile, calc, warnings, err := h.Service.CalculateForEmployee(r.Context(), employeeID)
	if err != nil {
		h.fail(w, r, err, "payroll_calculate_failed", "failed to calculate payroll")
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCalculation()
	}
	api.Success(w, employeeCalculationResponse{
		EmployeeID:  profile.EmployeeID,
		FullName:    profile.FullName,
		Calculation: calc,
		Warnings:    warnings,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunPayroll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	logger := requestctx.Logger(r.Context())

	var body bytes.Buffer
	var payload runPayload
	if err := json.NewDecoder(io.TeeReader(r.Body, &body)).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Period("period", payload.Period)
	if v.Reject(w, reqID) {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body.Bytes())
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), endpointRunPayroll, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", reqID)
			return
		}
		if err != nil {
			logger.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Created(w, stored, reqID)
			return
		}
	}

	summary, err := h.Service.RunPayroll(r.Context(), payload.Period)
	if err != nil {
		h.fail(w, r, err, "payroll_run_failed", "failed to run payroll")
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordRun(summary.EmployeeCount)
	}
	h.enqueuePayslips(r.Context(), summary.Run.ID)
	h.record(r, audit.ActionPayrollRun, "payroll_run", summary.Run.ID, nil, summary)

	if idempotencyKey != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(summary)
		if err != nil {
			logger.Warn("run response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), endpointRunPayroll, idempotencyKey, requestHash, encoded); err != nil {
			logger.Warn("idempotency save failed", "err", err)
		}
	}

	api.Created(w, summary, reqID)
}

func (h *Handler) enqueuePayslips(ctx context.Context, runID string) {
	if h.Jobs == nil {
		return
	}
	results, err := h.Service.ListResults(ctx, runID)
	if err != nil {
		requestctx.Logger(ctx).Warn("list results for payslips failed", "runId", runID, "err", err)
		return
	}
	for _, result := range results {
		employeeID := result.EmployeeID
		h.Jobs.Enqueue(jobs.JobPayslipGeneration, runID+"/"+employeeID, func(jobCtx context.Context) error {
			_, err := h.Service.GeneratePayslipPDF(jobCtx, runID, employeeID)
			return err
		})
	}
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, r, err, "payroll_run_failed", "failed to load payroll run")
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.Service.ListResults(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, r, err, "payroll_results_failed", "failed to list payroll results")
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	api.Success(w, map[string]any{
		"total":   len(results),
		"limit":   page.Limit,
		"offset":  page.Offset,
		"results": shared.Page(results, page),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportRegister(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	var buf bytes.Buffer
	if err := h.Service.ExportRegisterXLSX(r.Context(), runID, &buf); err != nil {
		h.fail(w, r, err, "export_failed", "failed to export register")
		return
	}
	api.WriteFile(w, xlsxContentType, "payroll-register-"+runID+".xlsx", buf.Bytes())
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	employeeID := chi.URLParam(r, "employeeID")
	data, err := h.Service.PayslipPDF(r.Context(), runID, employeeID)
	if err != nil {
		h.fail(w, r, err, "payslip_failed", "failed to load payslip")
		return
	}
	api.WriteFile(w, "application/pdf", "payslip-"+employeeID+".pdf", data)
}

// fail maps domain errors onto the response envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case payroll.IsNotFound(err):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, payroll.ErrUnknownPTKPStatus),
		errors.Is(err, payroll.ErrNegativeSalary),
		errors.Is(err, payroll.ErrRateOutOfRange),
		errors.Is(err, payroll.ErrInvalidComponent),
		errors.Is(err, payroll.ErrPeriodRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
	case errors.Is(err, payroll.ErrMissingSalary):
		api.Fail(w, http.StatusUnprocessableEntity, "missing_salary", err.Error(), reqID)
	default:
		requestctx.Logger(r.Context()).Error(message, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
