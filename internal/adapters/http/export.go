package httpadapter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"
	openapitypes "github.com/oapi-codegen/runtime/types"
	"github.com/xuri/excelize/v2"

	"github.com/scholarshield/backend/internal/core/domain"
)

const exportSheet = "Assessments"

var exportHeaders = []string{
	"Case ID", "Created At", "Risk Level", "Status",
	"Total Amount", "Vendor", "Due Date", "Recommended Action",
}

func (rt *Router) exportCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	var fromParam, toParam *openapitypes.Date
	if err := runtime.BindQueryParameter("form", true, false, "from", query, &fromParam); err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date, expected YYYY-MM-DD")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "to", query, &toParam); err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date, expected YYYY-MM-DD")
		return
	}

	format := query.Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "json" {
		writeError(w, http.StatusBadRequest, "format must be xlsx or json")
		return
	}

	// Both bounds are inclusive dates; the repository window is
	// half-open, so the end date advances one day.
	from := time.Time{}
	to := time.Now().UTC().AddDate(0, 0, 1)
	if fromParam != nil {
		from = fromParam.Time
	}
	if toParam != nil {
		if toParam.Time.Before(from) {
			writeError(w, http.StatusBadRequest, "'to' must not precede 'from'")
			return
		}
		to = toParam.Time.AddDate(0, 0, 1)
	}

	cases, err := rt.assessments.ListBetween(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if format == "json" {
		writeJSON(w, http.StatusOK, map[string]any{
			"cases": cases,
			"count": len(cases),
		})
		return
	}
	rt.writeXLSX(w, cases)
}

func (rt *Router) writeXLSX(w http.ResponseWriter, cases []domain.CaseAssessment) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("build export workbook: %v", err))
		return
	}
	for col, title := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("build export workbook: %v", err))
			return
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("build export workbook: %v", err))
			return
		}
	}

	for i, assessment := range cases {
		row := i + 2
		for col, value := range exportRow(assessment) {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("build export workbook: %v", err))
				return
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("build export workbook: %v", err))
				return
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("serialize export workbook: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="case_assessments.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func exportRow(assessment domain.CaseAssessment) []any {
	amount := any("")
	vendor := ""
	dueDate := ""
	if bill := assessment.BillData; bill != nil {
		if bill.TotalAmount != nil {
			amount = *bill.TotalAmount
		}
		vendor = bill.VendorName
		dueDate = bill.DueDate
	}
	action := ""
	if len(assessment.RecommendedActions) > 0 {
		action = assessment.RecommendedActions[0].Action
	}
	return []any{
		assessment.ID,
		assessment.CreatedAt.Format(time.RFC3339),
		string(assessment.RiskLevel),
		string(assessment.Status),
		amount,
		vendor,
		dueDate,
		action,
	}
}
