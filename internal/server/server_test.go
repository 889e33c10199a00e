package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	mock_server "github.com/zerowastelink/platform/internal/server/mocks"
	"github.com/zerowastelink/platform/internal/storage"
)

func newTestServer(ctrl *gomock.Controller) (*Server, *mock_server.MockService, *mock_server.MockUserRepo) {
	mockService := mock_server.NewMockService(ctrl)
	mockUserRepo := mock_server.NewMockUserRepo(ctrl)
	return New(mockService, mockUserRepo, zap.NewNop()), mockService, mockUserRepo
}

func TestHandleCreateDonation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	tests := []struct {
		name           string
		body           string
		setupMocks     func()
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"donor_id":"donor-1","title":"Buffet leftovers","food_type":"cooked-meals",
				"quantity":{"amount":10,"unit":"kg"},
				"location":{"latitude":12.97,"longitude":77.59}}`,
			setupMocks: func() {
				mockService.EXPECT().
					CreateDonation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ interface{}, d storage.Donation) (*storage.Donation, error) {
						assert.Equal(t, "donor-1", d.DonorID)
						assert.Equal(t, storage.FoodCookedMeals, d.FoodType)
						d.ID = "donation-1"
						d.Status = storage.StatusPending
						d.EstimatedMeals = 8
						return &d, nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           `{"donor_id":`,
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "validation error",
			body: `{"donor_id":"donor-1"}`,
			setupMocks: func() {
				mockService.EXPECT().
					CreateDonation(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: missing title", storage.ErrInvalidInput))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: `{"donor_id":"donor-1","title":"x"}`,
			setupMocks: func() {
				mockService.EXPECT().
					CreateDonation(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("database down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			req := httptest.NewRequest(http.MethodPost, "/donations", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			server.handleCreateDonation(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandleGetDonation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	t.Run("found", func(t *testing.T) {
		mockService.EXPECT().
			GetDonation(gomock.Any(), "donation-1").
			Return(&storage.Donation{ID: "donation-1", Title: "Bakery surplus"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/donations/donation-1", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "donation-1"})
		rr := httptest.NewRecorder()

		server.handleGetDonation(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var donation storage.Donation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &donation))
		assert.Equal(t, "Bakery surplus", donation.Title)
	})

	t.Run("not found", func(t *testing.T) {
		mockService.EXPECT().
			GetDonation(gomock.Any(), "missing").
			Return(nil, fmt.Errorf("donation %w", storage.ErrNotFound))

		req := httptest.NewRequest(http.MethodGet, "/donations/missing", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "missing"})
		rr := httptest.NewRecorder()

		server.handleGetDonation(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleUpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	tests := []struct {
		name           string
		body           string
		setupMocks     func()
		expectedStatus int
	}{
		{
			name: "valid transition",
			body: `{"status":"picked-up"}`,
			setupMocks: func() {
				mockService.EXPECT().
					UpdateStatus(gomock.Any(), "donation-1", storage.StatusPickedUp).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid transition is a conflict",
			body: `{"status":"delivered"}`,
			setupMocks: func() {
				mockService.EXPECT().
					UpdateStatus(gomock.Any(), "donation-1", storage.StatusDelivered).
					Return(fmt.Errorf("%w: pending -> delivered", storage.ErrInvalidTransition))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "malformed body",
			body:           `{`,
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			req := httptest.NewRequest(http.MethodPatch, "/donations/donation-1/status", bytes.NewBufferString(tc.body))
			req = mux.SetURLVars(req, map[string]string{"id": "donation-1"})
			rr := httptest.NewRecorder()

			server.handleUpdateStatus(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandleAccept(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	t.Run("accepted", func(t *testing.T) {
		mockService.EXPECT().
			Accept(gomock.Any(), "donation-1", "ngo-1").
			Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/donations/donation-1/accept",
			bytes.NewBufferString(`{"ngo_id":"ngo-1"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "donation-1"})
		rr := httptest.NewRecorder()

		server.handleAccept(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing ngo_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/donations/donation-1/accept",
			bytes.NewBufferString(`{}`))
		req = mux.SetURLVars(req, map[string]string{"id": "donation-1"})
		rr := httptest.NewRecorder()

		server.handleAccept(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleAssignVolunteer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	t.Run("wrong NGO is forbidden", func(t *testing.T) {
		mockService.EXPECT().
			AssignVolunteer(gomock.Any(), "donation-1", "ngo-2", "vol-1").
			Return(storage.ErrNotOwner)

		req := httptest.NewRequest(http.MethodPost, "/donations/donation-1/assign-volunteer",
			bytes.NewBufferString(`{"ngo_id":"ngo-2","volunteer_id":"vol-1"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "donation-1"})
		rr := httptest.NewRecorder()

		server.handleAssignVolunteer(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestHandleMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	mockService.EXPECT().
		Match(gomock.Any(), "donation-1").
		Return(&storage.MatchResult{DonationID: "donation-1"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/donations/donation-1/matches", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "donation-1"})
	rr := httptest.NewRecorder()

	server.handleMatches(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result storage.MatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, "donation-1", result.DonationID)
}

func TestHandleUserDonations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	t.Run("with query params", func(t *testing.T) {
		mockService.EXPECT().
			UserDonations(gomock.Any(), "donor-1", 5, true).
			Return([]storage.Donation{{ID: "donation-1"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/users/donor-1/donations?last=5&active=true", nil)
		req = mux.SetURLVars(req, map[string]string{"userID": "donor-1"})
		rr := httptest.NewRecorder()

		server.handleUserDonations(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("bad last param", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/donor-1/donations?last=zero", nil)
		req = mux.SetURLVars(req, map[string]string{"userID": "donor-1"})
		rr := httptest.NewRecorder()

		server.handleUserDonations(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleImpactReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, mockService, _ := newTestServer(ctrl)

	mockService.EXPECT().
		ImpactReport(gomock.Any(), "donor-1", "month").
		Return(&storage.ImpactReport{UserID: "donor-1", Period: "month", GeneratedAt: time.Now()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/donor-1/impact-report?period=month", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "donor-1"})
	rr := httptest.NewRecorder()

	server.handleImpactReport(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestBasicAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, _, mockUserRepo := newTestServer(ctrl)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := server.basicAuthMiddleware(next)

	t.Run("no credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/donations", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		mockUserRepo.EXPECT().
			ValidateUser(gomock.Any(), "ngo@example.org", "wrong").
			Return(false, nil)

		req := httptest.NewRequest(http.MethodGet, "/donations", nil)
		req.SetBasicAuth("ngo@example.org", "wrong")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid credentials", func(t *testing.T) {
		mockUserRepo.EXPECT().
			ValidateUser(gomock.Any(), "ngo@example.org", "secret").
			Return(true, nil)

		req := httptest.NewRequest(http.MethodGet, "/donations", nil)
		req.SetBasicAuth("ngo@example.org", "secret")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestMetricsEndpointSkipsAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server, _, _ := newTestServer(ctrl)
	router := server.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
