package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/soulbench/internal/artifact"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RunsHandler serves persisted run artifacts read-only.
type RunsHandler struct {
	catalog *artifact.Catalog
	logger  *zap.Logger
}

func NewRunsHandler(catalog *artifact.Catalog, logger *zap.Logger) *RunsHandler {
	return &RunsHandler{catalog: catalog, logger: logger}
}

type listRunsResponse struct {
	Runs []string `json:"runs"`
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.catalog.Runs()
	if err != nil {
		h.logger.Error("failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []string{}
	}
	writeJSON(w, http.StatusOK, listRunsResponse{Runs: runs})
}

func (h *RunsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openRun(w, r)
	if !ok {
		return
	}
	summary, err := store.Summary()
	if err != nil {
		writeError(w, http.StatusNotFound, "summary not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *RunsHandler) Document(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openRun(w, r)
	if !ok {
		return
	}
	iteration, ok := iterationParam(w, r)
	if !ok {
		return
	}
	doc, err := store.Document(iteration)
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (h *RunsHandler) Results(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openRun(w, r)
	if !ok {
		return
	}
	split := chi.URLParam(r, "split")
	if split != artifact.SplitTrain && split != artifact.SplitTest {
		writeError(w, http.StatusBadRequest, "split must be train or test")
		return
	}
	iteration, ok := iterationParam(w, r)
	if !ok {
		return
	}
	records, err := store.Results(split, iteration)
	if err != nil {
		writeError(w, http.StatusNotFound, "results not found")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *RunsHandler) openRun(w http.ResponseWriter, r *http.Request) (*artifact.Store, bool) {
	name := chi.URLParam(r, "name")
	store, err := h.catalog.Open(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown run")
		return nil, false
	}
	return store, true
}

func iterationParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	iteration, err := strconv.Atoi(chi.URLParam(r, "iteration"))
	if err != nil || iteration < 0 {
		writeError(w, http.StatusBadRequest, "iteration must be a non-negative integer")
		return 0, false
	}
	return iteration, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
