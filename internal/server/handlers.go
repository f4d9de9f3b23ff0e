package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"roadmap/internal/api"
	"roadmap/internal/attachments"
	"roadmap/internal/logging"
	"roadmap/internal/snapshotstore"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "list snapshot", err)
		return
	}
	out := api.RawEnvelope{Modules: make([]json.RawMessage, 0, len(records))}
	for _, record := range records {
		out.Modules = append(out.Modules, record.Data)
	}
	s.metrics.SetSnapshotSize(len(records))
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var envelope api.RawEnvelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&envelope); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	records := make([]snapshotstore.Record, 0, len(envelope.Modules))
	for i, raw := range envelope.Modules {
		id, err := api.RecordID(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("module %d: %v", i, err))
			return
		}
		records = append(records, snapshotstore.Record{ID: id, Data: raw})
	}
	if err := s.store.ReplaceAll(r.Context(), records); err != nil {
		s.storeFailure(w, r, "replace snapshot", err)
		return
	}
	s.metrics.IncrementBulkWrites()
	if count, err := s.store.Count(r.Context()); err == nil {
		s.metrics.SetSnapshotSize(count)
	}
	logging.WithContext(r.Context(), s.logger).Info("snapshot replaced", logging.Int("records", len(records)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	pathID := pathParam(r, "id")
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	id, err := api.RecordID(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id != pathID {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("record id %q does not match path id %q", id, pathID))
		return
	}
	if err := s.store.Upsert(r.Context(), snapshotstore.Record{ID: id, Data: data}); err != nil {
		s.storeFailure(w, r, "upsert record", err)
		return
	}
	if count, err := s.store.Count(r.Context()); err == nil {
		s.metrics.SetSnapshotSize(count)
	}
	logging.WithContext(logging.WithModuleID(r.Context(), id), s.logger).Debug("record upserted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.Reset(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "reset snapshot", err)
		return
	}
	s.metrics.SetSnapshotSize(0)
	logging.WithContext(r.Context(), s.logger).Info("snapshot reset", logging.Any("removed", removed))
	s.writeJSON(w, http.StatusOK, api.ResetResponse{Removed: removed})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	listing, err := attachments.List(s.filesDir, id)
	if err != nil {
		if errors.Is(err, attachments.ErrInvalidID) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.fail(w, r, http.StatusInternalServerError, "list attachments", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromListing(id, listing))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{Status: "ok", Backend: s.store.Backend()}
	if err := s.store.Ping(r.Context()); err != nil {
		resp.Status = "unavailable"
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if count, err := s.store.Count(r.Context()); err == nil {
		resp.Records = count
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// storeFailure maps invalid records to 400 and everything else to 500.
func (s *Server) storeFailure(w http.ResponseWriter, r *http.Request, action string, err error) {
	if errors.Is(err, snapshotstore.ErrInvalidRecord) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.fail(w, r, http.StatusInternalServerError, action, err)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, action string, err error) {
	logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), action+" failed", "store_error",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the storage backend"),
	)
	s.writeError(w, status, action+" failed")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}
