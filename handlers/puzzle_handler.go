package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"olympiadAPI/internal/puzzle"
	"olympiadAPI/middleware"
	"olympiadAPI/services"
)

type PuzzleHandler struct {
	puzzleService *services.PuzzleService
}

func NewPuzzleHandler(puzzleService *services.PuzzleService) *PuzzleHandler {
	return &PuzzleHandler{
		puzzleService: puzzleService,
	}
}

func (h *PuzzleHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cfg, err := h.puzzleService.GetConfig(ctx)
	if err != nil {
		log.Printf("GetConfig Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load puzzle configuration")
		return
	}

	respondWithJSON(w, http.StatusOK, cfg)
}

func (h *PuzzleHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req puzzle.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.puzzleService.UpdateConfig(ctx, &req)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "must be") {
			respondWithError(w, http.StatusBadRequest, errMsg)
			return
		}
		log.Printf("UpdateConfig Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update puzzle configuration")
		return
	}

	respondWithJSON(w, http.StatusOK, cfg)
}

func (h *PuzzleHandler) CollectPiece(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req puzzle.CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.puzzleService.CollectPiece(ctx, clerkID, req.ProfileID, req.PieceNumber)
	if err != nil {
		log.Printf("CollectPiece Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case errMsg == "profileId is required" ||
			errMsg == "pieceNumber must be a positive integer" ||
			errMsg == "invalid profile id":
			respondWithError(w, http.StatusBadRequest, errMsg)
		case errMsg == "profile not found" || strings.Contains(errMsg, "user not found"):
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to collect piece")
		}
		return
	}

	if !result.Success {
		middleware.RecordPieceConflict(result.Reason)
		respondWithJSON(w, http.StatusBadRequest, result)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *PuzzleHandler) ListCollectedPieces(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	vars := mux.Vars(r)
	userID := vars["userId"]
	profileID := vars["profileId"]

	pieces, err := h.puzzleService.ListCollectedPieces(ctx, userID, profileID)
	if err != nil {
		errMsg := err.Error()
		if errMsg == "invalid user id" || errMsg == "invalid profile id" {
			respondWithError(w, http.StatusBadRequest, errMsg)
			return
		}
		log.Printf("ListCollectedPieces Handler: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list collected pieces")
		return
	}

	respondWithJSON(w, http.StatusOK, pieces)
}
