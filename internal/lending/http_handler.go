package lending

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	coord *Coordinator
}

func NewHTTPHandler(coord *Coordinator) *HTTPHandler {
	return &HTTPHandler{coord: coord}
}

type loanRequest struct {
	BookID     string `json:"book_id"`
	BorrowerID string `json:"borrower_id"`
}

func (req *loanRequest) validate() []httpx.ErrorDetail {
	var details []httpx.ErrorDetail
	if strings.TrimSpace(req.BookID) == "" {
		details = append(details, httpx.ErrorDetail{Field: "book_id", Message: "is required"})
	}
	if strings.TrimSpace(req.BorrowerID) == "" {
		details = append(details, httpx.ErrorDetail{Field: "borrower_id", Message: "is required"})
	}
	return details
}

// Borrow handles POST /v1/loans
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLoanRequest(w, r)
	if !ok {
		return
	}

	result, err := h.coord.Borrow(r.Context(), req.BookID, req.BorrowerID)
	if err != nil {
		writeLendingError(w, r, err)
		return
	}

	httpx.JSONSuccessCreated(w, r, result)
}

// Return handles POST /v1/loans/return
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLoanRequest(w, r)
	if !ok {
		return
	}

	result, err := h.coord.Return(r.Context(), req.BookID, req.BorrowerID)
	if err != nil {
		writeLendingError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, result, nil)
}

func decodeLoanRequest(w http.ResponseWriter, r *http.Request) (loanRequest, bool) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return loanRequest{}, false
	}
	if details := req.validate(); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return loanRequest{}, false
	}
	return req, true
}

func writeLendingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBorrowerNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "BORROWER_NOT_FOUND", "Borrower not found", nil)
	case errors.Is(err, ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "BOOK_NOT_FOUND", "Book copy not found", nil)
	case errors.Is(err, ErrActiveLoanNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "ACTIVE_LOAN_NOT_FOUND", "No active loan for this book copy", nil)
	case errors.Is(err, ErrBookAlreadyBorrowed):
		httpx.JSONError(w, r, http.StatusConflict, "BOOK_ALREADY_BORROWED", "Book copy is already borrowed", nil)
	case errors.Is(err, ErrWrongBorrower):
		httpx.JSONError(w, r, http.StatusConflict, "WRONG_BORROWER", "Book copy is held by a different borrower", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
