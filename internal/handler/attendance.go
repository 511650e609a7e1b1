package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rommelmars/Attendance-Tracker-Company/internal/model"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/service"
	"github.com/rommelmars/Attendance-Tracker-Company/internal/shiftclock"
)

// AttendanceHandler exposes the engine over HTTP. It is a thin adapter: all
// policy lives in the service layer.
type AttendanceHandler struct {
	svc      *service.AttendanceService
	resolver *service.Resolver
	exporter *service.Exporter
	loc      *time.Location
}

func NewAttendanceHandler(svc *service.AttendanceService, resolver *service.Resolver, exporter *service.Exporter, loc *time.Location) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, resolver: resolver, exporter: exporter, loc: loc}
}

func (h *AttendanceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/attendance/action", h.HandleAction).Methods(http.MethodPost)
	r.HandleFunc("/api/attendance/status", h.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/attendance/history", h.HandleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/attendance/export.csv", h.HandleExportCSV).Methods(http.MethodGet)
}

// ActionRequest is the submit-action request body.
type ActionRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// HandleAction validates and applies a clock/break/lunch action.
func (h *AttendanceHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", "")
		return
	}
	action, ok := model.ParseAction(req.Action)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action), "")
		return
	}

	outcome, err := h.svc.Submit(r.Context(), req.UserID, action, time.Now(), req.Note)
	if err != nil {
		if ve, ok := model.AsValidation(err); ok {
			writeJSONStatus(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  ve.Message,
				Reason: string(ve.Reason),
			})
			return
		}
		log.Printf("submit action: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure, retry the action", "")
		return
	}
	writeJSON(w, outcome)
}

// HandleStatus returns the status snapshot for a user on a shift-day.
// Defaults to the current shift-day; past days are read-only.
func (h *AttendanceHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", "")
		return
	}
	now := time.Now()
	date := r.URL.Query().Get("date")
	if date == "" {
		date = shiftclock.ShiftDayOf(now, h.loc)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "")
		return
	}

	snap, err := h.resolver.Snapshot(r.Context(), userID, date, now)
	if err != nil {
		log.Printf("status: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure", "")
		return
	}
	writeJSON(w, snap)
}

// HandleHistory lists a user's events for one shift-day, oldest first.
// Defaults to the current shift-day.
func (h *AttendanceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", "")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = shiftclock.ShiftDayOf(time.Now(), h.loc)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "")
		return
	}

	events, err := h.resolver.History(r.Context(), userID, date)
	if err != nil {
		log.Printf("history: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure", "")
		return
	}
	if events == nil {
		events = []*model.AttendanceEvent{}
	}
	writeJSON(w, events)
}

// HandleExportCSV streams attendance rows as CSV, for one user or all users.
func (h *AttendanceHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	rows, err := h.exporter.Rows(r.Context(), userID)
	if err != nil {
		log.Printf("export: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure", "")
		return
	}

	name := "all_attendance_logs.csv"
	if userID != "" {
		name = userID + "_attendance.csv"
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)

	cw := csv.NewWriter(w)
	if err := WriteCSV(cw, rows); err != nil {
		log.Printf("export: write csv: %v", err)
	}
}

// WriteCSV writes export rows with the standard column set. The export CLI
// command shares this with the HTTP handler so both surfaces stay identical.
func WriteCSV(cw *csv.Writer, rows []service.ExportRow) error {
	header := []string{
		"Username", "Date", "Action", "Time",
		"Break1 Remaining", "Break1 Exceeded",
		"Break2 Remaining", "Break2 Exceeded",
		"Lunch Remaining", "Lunch Exceeded",
		"Note",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.UserID,
			row.Date,
			string(row.Action),
			row.LocalTime,
			strconv.Itoa(row.Remaining[model.CategoryBreak1]),
			strconv.Itoa(row.Exceeded[model.CategoryBreak1]),
			strconv.Itoa(row.Remaining[model.CategoryBreak2]),
			strconv.Itoa(row.Exceeded[model.CategoryBreak2]),
			strconv.Itoa(row.Remaining[model.CategoryLunch]),
			strconv.Itoa(row.Exceeded[model.CategoryLunch]),
			row.Note,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSONStatus(w, status, errorResponse{Error: msg, Reason: reason})
}
