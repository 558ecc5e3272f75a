package server

import (
	"context"
	"net/http"
	"time"
)

func (s *Service) handleListPujas(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pujas, err := s.pujas.ActivePujas(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list pujas")
		s.respondError(w, http.StatusInternalServerError, "unable to list pujas")
		return
	}

	s.respondData(w, pujas)
}
