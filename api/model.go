package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	appErrors "github.com/fatali-fataliyev/mood_ledger/errors"
	"github.com/fatali-fataliyev/mood_ledger/internal/budget"
	"github.com/fatali-fataliyev/mood_ledger/internal/ledger"
)

// REQUESTS START:
type CreateRecordRequest struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
	Mood     string  `json:"mood"`
	Image    string  `json:"img"`
}

type SaveBudgetRequest struct {
	Values map[string]float64 `json:"values"`
}

type ClassifyRequest struct {
	Text string `json:"text"`
}

//REQUESTS END:

//RESPONSES:

type RecordCreatedResponse struct {
	Message string        `json:"message"`
	Record  ledger.Record `json:"record"`
}

type ListRecordsResponse struct {
	Records []ledger.Record `json:"records"`
}

type BudgetResponse struct {
	Month  ledger.MonthKey             `json:"month"`
	Values map[ledger.Category]float64 `json:"values"`
}

type ClassifyResponse struct {
	Mood    ledger.Mood `json:"mood"`
	Summary string      `json:"summary"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrInvalidInput:
		return 400 // bad request
	case appErrors.ErrAuth:
		return 401 // unauthorized
	case appErrors.ErrAccessDenied:
		return 403 // access denied
	case appErrors.ErrConflict:
		return 409 // conflict
	default:
		return 500 //internal error
	}
}

func BudgetToHttp(cfg ledger.BudgetConfig) BudgetResponse {
	return BudgetResponse{
		Month:  cfg.Month,
		Values: cfg.Values,
	}
}

func RecordFilterCheckParams(params url.Values) (budget.RecordFilter, error) {
	var filter budget.RecordFilter

	if categoryStr := params.Get("category"); categoryStr != "" {
		category, err := ledger.ParseCategory(categoryStr)
		if err != nil {
			return filter, appErrors.New(appErrors.ErrInvalidInput, "%v", err)
		}
		filter.Category = category
	}

	if limitStr := params.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return filter, appErrors.New(appErrors.ErrInvalidInput, "invalid limit: %s", limitStr)
		}
		filter.Limit = limit
	}

	return filter, nil
}

func spanCheckParam(params url.Values) (int, error) {
	spanStr := params.Get("span")
	if spanStr == "" {
		return 0, nil
	}
	span, err := strconv.Atoi(spanStr)
	if err != nil {
		return 0, appErrors.New(appErrors.ErrInvalidInput, "invalid span: %s", spanStr)
	}
	return span, nil
}

// errorText hides wrapped internals behind the message of the closest
// ErrorResponse.
func errorText(action string, err error) string {
	var resp appErrors.ErrorResponse
	if errors.As(err, &resp) {
		return fmt.Sprintf("%s: %s", action, resp.Message)
	}
	return fmt.Sprintf("%s: %v", action, err)
}
