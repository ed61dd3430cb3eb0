package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/mood_ledger/errors"
	"github.com/fatali-fataliyev/mood_ledger/internal/analytics"
	"github.com/fatali-fataliyev/mood_ledger/internal/auth"
	"github.com/fatali-fataliyev/mood_ledger/internal/budget"
	"github.com/fatali-fataliyev/mood_ledger/internal/contextutil"
	"github.com/fatali-fataliyev/mood_ledger/logging"
)

const TRACE_ID_HEADER = "X-Trace-Id"

type Api struct {
	Service *budget.BudgetTracker
	// bcrypt hash of the passcode, empty disables the check
	passcodeHash string
}

func NewApi(service *budget.BudgetTracker, passcodeHash string) *Api {
	return &Api{
		Service:      service,
		passcodeHash: passcodeHash,
	}
}

// Routes registers every endpoint on a new mux.
func (api *Api) Routes() *http.ServeMux {
	server := http.NewServeMux()

	// RECORD ENDPOINTS.
	server.HandleFunc("POST /api/records", iz.Bind(api.AddRecordHandler))          // Create Record
	server.HandleFunc("GET /api/records", iz.Bind(api.ListRecordsHandler))         // Get Records with filters
	server.HandleFunc("GET /api/records/export", api.ExportRecordsHandler)         // Download Records as CSV
	server.HandleFunc("GET /api/records/{id}", iz.Bind(api.GetRecordByIdHandler))  // Get Record by ID
	server.HandleFunc("POST /api/mood/classify", iz.Bind(api.ClassifyMoodHandler)) // Suggest a mood for a note

	// BUDGET ENDPOINTS.
	server.HandleFunc("GET /api/budget", iz.Bind(api.GetBudgetHandler))  // Get Budget of current month
	server.HandleFunc("PUT /api/budget", iz.Bind(api.SaveBudgetHandler)) // Update Budget

	// STATISTICS ENDPOINTS.
	server.HandleFunc("GET /api/dashboard", iz.Bind(api.DashboardHandler))   // Month summary, budget usage and warning
	server.HandleFunc("GET /api/statistics", iz.Bind(api.StatisticsHandler)) // Range totals, daily totals and mood stats
	server.HandleFunc("GET /api/trend", iz.Bind(api.TrendHandler))           // Trend warning

	// DATA ENDPOINTS.
	server.HandleFunc("POST /api/reset", iz.Bind(api.ResetHandler)) // Clear data and restore samples

	return server
}

func (api *Api) authorize(header http.Header) error {
	if api.passcodeHash == "" {
		return nil
	}
	passcode, ok := auth.PasscodeFromHeader(header.Get("Authorization"))
	if !ok {
		return appErrors.New(appErrors.ErrAuth, "Authorization header is required.")
	}
	if !auth.ComparePasscode(api.passcodeHash, passcode) {
		return appErrors.New(appErrors.ErrAuth, "wrong passcode")
	}
	return nil
}

func requestContext(ctx context.Context, header http.Header) context.Context {
	return contextutil.WithTraceID(ctx, header.Get(TRACE_ID_HEADER))
}

func (api *Api) AddRecordHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	var newRecordReq CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&newRecordReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	record, err := api.Service.AddRecord(ctx, budget.NewRecordRequest{
		Amount:   newRecordReq.Amount,
		Category: newRecordReq.Category,
		Note:     newRecordReq.Note,
		Mood:     newRecordReq.Mood,
		Image:    newRecordReq.Image,
	})
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to save record", err))
	}

	resp := RecordCreatedResponse{
		Message: "Record saved",
		Record:  record,
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) ListRecordsHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	filter, err := RecordFilterCheckParams(r.URL.Query())
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("invalid filters", err))
	}

	records, err := api.Service.ListRecords(ctx, filter)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to get records", err))
	}
	return iz.Respond().Status(200).JSON(ListRecordsResponse{Records: records})
}

func (api *Api) GetRecordByIdHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/records/"), "/")
	if id == "" {
		return iz.Respond().Status(400).Text("record id is required")
	}

	record, err := api.Service.GetRecordByID(ctx, id)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to get record", err))
	}
	return iz.Respond().Status(200).JSON(record)
}

func (api *Api) ExportRecordsHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.authorize(r.Header); err != nil {
		http.Error(w, errorText("authorization failed", err), http.StatusUnauthorized)
		return
	}
	ctx := requestContext(r.Context(), r.Header)

	var buf bytes.Buffer
	if err := api.Service.ExportCSV(ctx, &buf); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to export records: %v", contextutil.TraceIDFromContext(ctx), err)
		http.Error(w, errorText("failed to export records", err), httpStatusFromError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to write export response: %v", contextutil.TraceIDFromContext(ctx), err)
	}
}

func (api *Api) ClassifyMoodHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	mood := api.Service.Classify(req.Text)
	return iz.Respond().Status(200).JSON(ClassifyResponse{Mood: mood, Summary: analytics.MoodSummary(mood)})
}

func (api *Api) GetBudgetHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	cfg, err := api.Service.LoadBudgetConfig(ctx)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to get budget", err))
	}
	return iz.Respond().Status(200).JSON(BudgetToHttp(cfg))
}

func (api *Api) SaveBudgetHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	var req SaveBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	cfg, err := api.Service.SaveBudget(ctx, req.Values)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to save budget", err))
	}
	return iz.Respond().Status(200).JSON(BudgetToHttp(cfg))
}

func (api *Api) DashboardHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	dashboard, err := api.Service.Dashboard(ctx)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to build dashboard", err))
	}
	return iz.Respond().Status(200).JSON(dashboard)
}

func (api *Api) StatisticsHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	params := r.URL.Query()
	span, err := spanCheckParam(params)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("invalid parameters", err))
	}

	stats, err := api.Service.Statistics(ctx, params.Get("range"), span)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to get statistics", err))
	}
	return iz.Respond().Status(200).JSON(stats)
}

func (api *Api) TrendHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	warning, err := api.Service.Trend(ctx)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to get trend", err))
	}
	return iz.Respond().Status(200).JSON(warning)
}

func (api *Api) ResetHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r.Header); err != nil {
		return iz.Respond().Status(401).Text(errorText("authorization failed", err))
	}
	ctx := requestContext(r.Context(), r.Header)

	if err := api.Service.ResetData(ctx); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(errorText("failed to reset data", err))
	}
	logging.Logger.Infof("[TraceID=%s] | data reset to samples", contextutil.TraceIDFromContext(ctx))
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "Sample data restored"})
}
