package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/realmbroker/internal/api/middleware"
	"github.com/darmiel/realmbroker/internal/api/presenter"
	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/core"
)

const defaultAuditLimit = 50

// handleRecentAudits returns the latest audit entries of the caller's realm.
func (s *Server) handleRecentAudits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	reader, ok := s.auditor.(core.AuditReader)
	if !ok {
		presenter.Error(w, r, "configured auditor does not keep entries", http.StatusNotImplemented)
		return
	}

	// filters
	q := r.URL.Query()
	filterCorrelationID := q.Get("correlation_id")
	filterPrincipal := q.Get("principal")
	filterAction := q.Get("action")
	filterFingerprint := q.Get("fingerprint")

	limit := defaultAuditLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 0 {
			logger.Warn().Err(err).Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = v
	}

	realm := middleware.RealmCtx(ctx)
	entries, err := reader.Find(func(entry core.AuditEntry) bool {
		if entry.Realm != realm {
			return false
		}
		if filterCorrelationID != "" && entry.ID != filterCorrelationID {
			return false
		}
		if filterPrincipal != "" && entry.Principal != filterPrincipal {
			return false
		}
		if filterAction != "" && entry.Action != filterAction {
			return false
		}
		if filterFingerprint != "" && entry.TokenFingerprint != filterFingerprint {
			return false
		}
		return true
	}, limit)
	if errors.Is(err, audit.ErrNotReadable) {
		presenter.Error(w, r, "configured auditor does not keep entries", http.StatusNotImplemented)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit logs")
		presenter.Error(w, r, "failed to retrieve audit logs", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}

	presenter.JSON(w, r, entries, http.StatusOK)
}
