package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"olympiadAPI/internal/submission"
	"olympiadAPI/middleware"
	"olympiadAPI/services"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req submission.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.submissionService.CreateSubmission(ctx, clerkID, &req)
	if err != nil {
		log.Printf("CreateSubmission Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "unknown submission type") ||
			errMsg == "content is required" ||
			errMsg == "profileId is required" ||
			errMsg == "invalid profile id":
			respondWithError(w, http.StatusBadRequest, errMsg)
		case errMsg == "profile not found" || strings.Contains(errMsg, "user not found"):
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create submission")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) GetSubmissions(w http.ResponseWriter, r *http.Request) {
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

	subs, err := h.submissionService.GetSubmissions(ctx, clerkID, profileID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, subs)
}

// ReviewSubmission is mounted behind admin basic auth only.
func (h *SubmissionHandler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	vars := mux.Vars(r)
	subType := submission.Type(vars["type"])
	submissionID := vars["id"]

	var req submission.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.submissionService.ReviewSubmission(ctx, subType, submissionID, &req)
	if err != nil {
		log.Printf("ReviewSubmission Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "unknown submission type") ||
			errMsg == "status must be approved or rejected" ||
			errMsg == "creditScore must not be negative" ||
			errMsg == "invalid submission id":
			respondWithError(w, http.StatusBadRequest, errMsg)
		case errMsg == "submission not found":
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to review submission")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}
