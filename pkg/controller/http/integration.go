package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

type integrationsResponse struct {
	Integrations []usecase.IntegrationSummary `json:"integrations"`
}

func (s *Server) listIntegrations(w http.ResponseWriter, r *http.Request) {
	list, err := s.uc.Integration.List(r.Context(), currentUser(r).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, integrationsResponse{Integrations: list})
}

func (s *Server) syncIntegrations(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.Integration.SyncNow(r.Context(), currentUser(r).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// connectRequest carries the credentials obtained by the provider's OAuth flow
type connectRequest struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
	TeamID       string     `json:"team_id"`
	TeamName     string     `json:"team_name"`
	Scope        string     `json:"scope"`
}

// connectIntegration stores credentials and pushes the current status to the
// new integration in the background
func (s *Server) connectIntegration(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	userID := currentUser(r).ID
	err := s.uc.Integration.Connect(r.Context(), &model.Integration{
		UserID:       userID,
		Type:         types.IntegrationType(chi.URLParam(r, "type")),
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
		TeamID:       req.TeamID,
		TeamName:     req.TeamName,
		Scope:        req.Scope,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.background.Dispatch(r.Context(), func(ctx context.Context) error {
		_, err := s.uc.Integration.SyncNow(ctx, userID)
		return err
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) disconnectIntegration(w http.ResponseWriter, r *http.Request) {
	integrationType := types.IntegrationType(chi.URLParam(r, "type"))
	if err := s.uc.Integration.Disconnect(r.Context(), currentUser(r).ID, integrationType); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
