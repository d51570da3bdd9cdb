package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/qoit/pkg/domain/model"
)

type messagesResponse struct {
	Messages []messageResponse `json:"messages"`
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.uc.Message.List(r.Context(), currentUser(r).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := messagesResponse{Messages: make([]messageResponse, len(msgs))}
	for i, m := range msgs {
		resp.Messages[i] = toMessageResponse(m)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) markMessageRead(w http.ResponseWriter, r *http.Request) {
	id := model.MessageID(chi.URLParam(r, "id"))
	if err := s.uc.Message.MarkRead(r.Context(), currentUser(r).ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id := model.MessageID(chi.URLParam(r, "id"))
	if err := s.uc.Message.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
