package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"olympiadAPI/middleware"
	"olympiadAPI/services"
)

type ScoreHandler struct {
	scoreService   *services.ScoreService
	profileService *services.ProfileService
}

func NewScoreHandler(scoreService *services.ScoreService, profileService *services.ProfileService) *ScoreHandler {
	return &ScoreHandler{
		scoreService:   scoreService,
		profileService: profileService,
	}
}

func (h *ScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	p, err := h.profileService.GetOwnedProfile(ctx, clerkID, mux.Vars(r)["profileId"])
	if err != nil {
		h.respondProfileError(w, err)
		return
	}

	breakdown, err := h.scoreService.ComputeTotalScore(ctx, p.ID)
	if err != nil {
		log.Printf("GetScore Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute score")
		return
	}

	respondWithJSON(w, http.StatusOK, breakdown)
}

func (h *ScoreHandler) GetWeeklyScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	p, err := h.profileService.GetOwnedProfile(ctx, clerkID, mux.Vars(r)["profileId"])
	if err != nil {
		h.respondProfileError(w, err)
		return
	}

	windowStart := services.WeekWindowStart(time.Now())

	breakdown, err := h.scoreService.ComputeWeeklyScore(ctx, p.ID, windowStart)
	if err != nil {
		log.Printf("GetWeeklyScore Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute weekly score")
		return
	}

	respondWithJSON(w, http.StatusOK, breakdown)
}

func (h *ScoreHandler) respondProfileError(w http.ResponseWriter, err error) {
	errMsg := err.Error()
	switch {
	case errMsg == "invalid profile id":
		respondWithError(w, http.StatusBadRequest, errMsg)
	case errMsg == "profile not found" || strings.Contains(errMsg, "user not found"):
		respondWithError(w, http.StatusNotFound, errMsg)
	default:
		log.Printf("Score Handler: profile lookup error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load profile")
	}
}
