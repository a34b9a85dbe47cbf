package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"olympiadAPI/internal/leaderboard"
	"olympiadAPI/middleware"
	"olympiadAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	// Ranking reads every profile's sources; give it a little more room
	// than the usual handler timeout.
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view := leaderboard.View(r.URL.Query().Get("view"))
	if view == "" {
		view = leaderboard.ViewOverall
	}

	board, err := h.leaderboardService.BuildLeaderboard(ctx, view)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown leaderboard view") {
			respondWithError(w, http.StatusBadRequest, errMsg)
			return
		}
		log.Printf("GetLeaderboard Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}
