package api

import (
	"net/http"

	"github.com/darmiel/realmbroker/internal/api/middleware"
	"github.com/darmiel/realmbroker/internal/api/presenter"
	"github.com/darmiel/realmbroker/internal/buildinfo"
)

type HealthResponse struct {
	Status string `json:"status"`
	Realm  string `json:"realm"`
}

// handleHealth reports liveness together with the realm the request resolved to.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, HealthResponse{
		Status: "ok",
		Realm:  middleware.RealmCtx(r.Context()).ID(),
	}, http.StatusOK)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.GetBuildInfo()
	info.Realm = middleware.RealmCtx(r.Context()).ID()
	presenter.JSON(w, r, info, http.StatusOK)
}
