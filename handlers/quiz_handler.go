package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"olympiadAPI/internal/quiz"
	"olympiadAPI/middleware"
	"olympiadAPI/services"
)

type QuizHandler struct {
	quizService *services.QuizService
}

func NewQuizHandler(quizService *services.QuizService) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
	}
}

func (h *QuizHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req quiz.RecordAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	attempt, err := h.quizService.RecordAttempt(ctx, clerkID, &req)
	if err != nil {
		log.Printf("RecordAttempt Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case errMsg == "profileId is required" ||
			errMsg == "score must not be negative" ||
			errMsg == "invalid profile id":
			respondWithError(w, http.StatusBadRequest, errMsg)
		case errMsg == "profile not found" || strings.Contains(errMsg, "user not found"):
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to record quiz attempt")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, attempt)
}

func (h *QuizHandler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profileID := r.URL.Query().Get("profileId")
	if profileID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'profileId' is required")
		return
	}

	attempts, err := h.quizService.GetAttempts(ctx, clerkID, profileID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, attempts)
}
