package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   getHandlerName(r.URL.Path, r.Method),
		}

		if email, _, ok := r.BasicAuth(); ok {
			entry.UserEmail = email
		}

		if strings.Contains(r.URL.Path, "/donations/") {
			parts := strings.Split(r.URL.Path, "/")
			for i, part := range parts {
				if part == "donations" && i+1 < len(parts) {
					entry.DonationID = parts[i+1]
					break
				}
			}
		}

		if r.Body != nil {
			requestBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)

			if entry.DonationID != "" && strings.Contains(r.URL.Path, "/status") {
				var statusRequest struct {
					Status string `json:"status"`
				}
				if err := json.Unmarshal(requestBody, &statusRequest); err == nil {
					if donation, err := s.service.GetDonation(r.Context(), entry.DonationID); err == nil {
						entry.OldStatus = string(donation.Status)
						entry.NewStatus = statusRequest.Status
					}
				}
			}
		}

		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func getHandlerName(path string, method string) string {
	switch {
	case strings.HasPrefix(path, "/users") && strings.Contains(path, "/donations"):
		return "handleUserDonations"
	case strings.HasPrefix(path, "/users") && strings.Contains(path, "/impact-report"):
		return "handleImpactReport"
	case strings.HasPrefix(path, "/donations"):
		switch {
		case method == http.MethodPost && strings.Contains(path, "/accept"):
			return "handleAccept"
		case method == http.MethodPost && strings.Contains(path, "/assign-volunteer"):
			return "handleAssignVolunteer"
		case method == http.MethodPatch && strings.Contains(path, "/status"):
			return "handleUpdateStatus"
		case method == http.MethodPatch && strings.Contains(path, "/quantity"):
			return "handleUpdateQuantity"
		case method == http.MethodGet && strings.Contains(path, "/matches"):
			return "handleMatches"
		case method == http.MethodGet && strings.Contains(path, "/history"):
			return "handleHistory"
		case method == http.MethodPost:
			return "handleCreateDonation"
		case method == http.MethodGet && path == "/donations":
			return "handleListDonations"
		case method == http.MethodGet:
			return "handleGetDonation"
		}
	}
	return "unknown"
}
