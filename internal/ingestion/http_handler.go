package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpattn/finsheet/internal/auth"
	"github.com/rpattn/finsheet/internal/export"
	"github.com/rpattn/finsheet/internal/repository"

	"github.com/google/uuid"
)

const defaultMaxUploadBytes = 32 << 20

// Handler exposes ingestion runs over HTTP.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHTTPHandler serves POST /ingestions, GET /ingestions/{id},
// GET /ingestions/{id}/export, GET /ingestions?id=... and GET /ingestions/logs.
func NewHTTPHandler(service *Service, maxUploadBytes int64) http.Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ingestions"), "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.upload(w, r)
	case rest == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case rest == "logs" && r.Method == http.MethodGet:
		h.logs(w, r)
	case rest != "" && rest != "logs" && !strings.Contains(rest, "/") && r.Method == http.MethodGet:
		h.get(w, r, rest)
	case strings.HasSuffix(rest, "/export") && strings.Count(rest, "/") == 1 && r.Method == http.MethodGet:
		h.export(w, r, strings.TrimSuffix(rest, "/export"))
	case rest == "" || rest == "logs":
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	default:
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.NotFound(w, r)
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	orgID, err := uuid.Parse(strings.TrimSpace(r.FormValue("organizationId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organization id: %v", err), http.StatusBadRequest)
		return
	}

	req := Request{
		OrganizationID: orgID,
		FileName:       header.Filename,
		PeriodTypeHint: strings.TrimSpace(r.FormValue("periodType")),
		Data:           file,
	}

	run, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid ingestion id: %v", err), http.StatusBadRequest)
		return
	}

	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid ingestion id: %v", err), http.StatusBadRequest)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.FileName(run, format)))
	if err := export.Write(w, run, h.service.Registry(), format); err != nil {
		log.Printf("[HTTP] export %s failed: %v", id, err)
	}
}

// list resolves explicit ?id= values in one batch, or pages through an
// organization's runs when only organizationId is given.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if rawIDs := query["id"]; len(rawIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(rawIDs))
		for _, raw := range rawIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid ingestion id %q: %v", raw, err), http.StatusBadRequest)
				return
			}
			ids = append(ids, id)
		}

		runs, err := h.service.GetRuns(r.Context(), ids)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, runs)
		return
	}

	orgID, ok := organizationParam(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	runs, err := h.service.ListRuns(r.Context(), orgID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationParam(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	entries, err := h.service.ListLogs(r.Context(), orgID, r.URL.Query().Get("fileName"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// organizationParam reads organizationId from the query, falling back to the
// authenticated scope.
func organizationParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("organizationId"))
	if raw == "" {
		if scoped, ok := auth.OrganizationIDFromContext(r.Context()); ok {
			return scoped, true
		}
		http.Error(w, "organizationId is required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid organization id: %v", err), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var ingestErr *IngestError
	switch {
	case errors.As(err, &ingestErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: ingestErr.KindName()})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrScopeMismatch):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrOrganizationRequired):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
