package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/storage"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var donation storage.Donation
	if err := json.NewDecoder(r.Body).Decode(&donation); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.service.CreateDonation(r.Context(), donation)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing donation ID")
		return
	}

	donation, err := s.service.GetDonation(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, donation)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	filter := storage.ListFilter{
		Status:   storage.Status(r.URL.Query().Get("status")),
		FoodType: storage.FoodType(r.URL.Query().Get("food_type")),
		DonorID:  r.URL.Query().Get("donor_id"),
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			respondError(w, http.StatusBadRequest, "invalid value for 'page' parameter")
			return
		}
		filter.Page = page
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "invalid value for 'limit' parameter")
			return
		}
		filter.Limit = limit
	}

	donations, err := s.service.ListDonations(r.Context(), filter)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, donations)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var statusRequest struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.service.UpdateStatus(r.Context(), id, storage.Status(statusRequest.Status)); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "donation status updated",
		"id":      id,
		"status":  statusRequest.Status,
	})
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var quantityRequest struct {
		Quantity storage.Quantity `json:"quantity"`
		FoodType storage.FoodType `json:"food_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&quantityRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.service.UpdateQuantity(r.Context(), id, quantityRequest.Quantity, quantityRequest.FoodType)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var acceptRequest struct {
		NGOID string `json:"ngo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&acceptRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if acceptRequest.NGOID == "" {
		respondError(w, http.StatusBadRequest, "missing ngo_id")
		return
	}

	if err := s.service.Accept(r.Context(), id, acceptRequest.NGOID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "donation accepted",
		"id":      id,
	})
}

func (s *Server) handleAssignVolunteer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var assignRequest struct {
		NGOID       string `json:"ngo_id"`
		VolunteerID string `json:"volunteer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&assignRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if assignRequest.NGOID == "" || assignRequest.VolunteerID == "" {
		respondError(w, http.StatusBadRequest, "missing ngo_id or volunteer_id")
		return
	}

	if err := s.service.AssignVolunteer(r.Context(), id, assignRequest.NGOID, assignRequest.VolunteerID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "volunteer assigned",
		"id":      id,
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.service.Match(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	history, err := s.service.History(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleUserDonations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	lastN := 0
	if lastNStr := r.URL.Query().Get("last"); lastNStr != "" {
		var err error
		lastN, err = strconv.Atoi(lastNStr)
		if err != nil || lastN <= 0 {
			respondError(w, http.StatusBadRequest, "invalid value for 'last' parameter")
			return
		}
	}
	activeOnly := r.URL.Query().Get("active") == "true"

	donations, err := s.service.UserDonations(r.Context(), userID, lastN, activeOnly)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, donations)
}

func (s *Server) handleImpactReport(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	period := r.URL.Query().Get("period")

	report, err := s.service.ImpactReport(r.Context(), userID, period)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}
