package borrower

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (req *registerRequest) validate() []httpx.ErrorDetail {
	var details []httpx.ErrorDetail
	if strings.TrimSpace(req.Name) == "" {
		details = append(details, httpx.ErrorDetail{Field: "name", Message: "is required"})
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		details = append(details, httpx.ErrorDetail{Field: "email", Message: "is required"})
	} else if !strings.Contains(email, "@") {
		details = append(details, httpx.ErrorDetail{Field: "email", Message: "is not a valid email address"})
	}
	return details
}

// Register handles POST /v1/borrowers
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return
	}
	if details := req.validate(); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	b, err := h.svc.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			httpx.JSONError(w, r, http.StatusConflict, "EMAIL_ALREADY_EXISTS", "Email already exists", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, b)
}

// Get handles GET /v1/borrowers/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Borrower id is required", nil)
		return
	}

	b, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "BORROWER_NOT_FOUND", "Borrower not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}
