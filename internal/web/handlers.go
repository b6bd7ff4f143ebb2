package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/tutoradmin/internal/core"
	"github.com/JonMunkholm/tutoradmin/internal/logging"
	"github.com/JonMunkholm/tutoradmin/internal/rpc"
	"github.com/JonMunkholm/tutoradmin/internal/web/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := templates.IndexData{}
	for _, info := range core.All() {
		data.Tables = append(data.Tables, templates.TableSummary{
			Name:    info.Name,
			Sheet:   info.Sheet,
			IsForm:  info.IsForm,
			Columns: len(info.Fields),
		})
	}
	if s.gate != nil {
		data.GateHolder = s.gate.Holder()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string               `json:"status"`
	Gate   *core.WriteGateStatus `json:"gate,omitempty"`
}

// handleHealth reports liveness and what, if anything, holds the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.gate != nil {
		st := s.gate.Status()
		resp.Gate = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAsk runs one dispatcher call. The body is the JSON call path, for
// example ["tutors","delete",1725235200000]. The reply is always an
// envelope; only an unreadable body changes the status.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var path []any
	if err := json.NewDecoder(r.Body).Decode(&path); err != nil {
		err = fmt.Errorf("call path must be a JSON array: %v: %w", err, core.ErrBadArgument)
		writeJSON(w, http.StatusBadRequest, rpc.Envelope{
			Error:   true,
			Message: err.Error(),
			Code:    core.MapError(err).Code,
		})
		return
	}

	writeJSON(w, http.StatusOK, s.dispatcher.Handle(r.Context(), path))
}

// SubmitResponse is the body of a successful form submission.
type SubmitResponse struct {
	Receipt string      `json:"receipt"`
	Table   string      `json:"table"`
	Record  core.Record `json:"record"`
}

// handleSubmitForm appends one submission to a form table.
func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var rec core.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.respondError(w, r, fmt.Errorf("submission must be a JSON object: %v: %w", err, core.ErrBadArgument))
		return
	}

	saved, err := s.svc.Submit(r.Context(), table, rec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	receipt := uuid.NewString()
	logging.WithFields(r.Context(), "table", table, "receipt", receipt).Info("form submission stored")

	writeJSON(w, http.StatusCreated, SubmitResponse{
		Receipt: receipt,
		Table:   table,
		Record:  saved,
	})
}

// ColumnResponse describes one column in GET /api/tables.
type ColumnResponse struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Enum []string `json:"enum,omitempty"`
}

// TableResponse describes one registered table.
type TableResponse struct {
	Name    string           `json:"name"`
	Sheet   string           `json:"sheet"`
	IsForm  bool             `json:"isForm"`
	Columns []ColumnResponse `json:"columns"`
}

// handleListTables returns every registered schema.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	all := core.All()
	resp := make([]TableResponse, 0, len(all))
	for _, info := range all {
		t := TableResponse{Name: info.Name, Sheet: info.Sheet, IsForm: info.IsForm}
		for _, f := range info.Fields {
			t.Columns = append(t.Columns, ColumnResponse{Name: f.Name, Type: f.Type.String(), Enum: f.EnumValues})
		}
		resp = append(resp, t)
	}
	writeJSON(w, http.StatusOK, resp)
}
