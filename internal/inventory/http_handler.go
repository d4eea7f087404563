package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"libraryapi/internal/catalog"
	"libraryapi/internal/httpx"
)

const maxPageSize = 50

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

type registerCopyRequest struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (req *registerCopyRequest) validate() []httpx.ErrorDetail {
	var details []httpx.ErrorDetail
	if strings.TrimSpace(req.ISBN) == "" {
		details = append(details, httpx.ErrorDetail{Field: "isbn", Message: "is required"})
	}
	if strings.TrimSpace(req.Title) == "" {
		details = append(details, httpx.ErrorDetail{Field: "title", Message: "is required"})
	}
	if strings.TrimSpace(req.Author) == "" {
		details = append(details, httpx.ErrorDetail{Field: "author", Message: "is required"})
	}
	return details
}

// RegisterCopy handles POST /v1/books. Catalog metadata is deduplicated by
// normalized ISBN; a second copy of a known ISBN must carry the exact same
// title and author.
func (h *HTTPHandler) RegisterCopy(w http.ResponseWriter, r *http.Request) {
	var req registerCopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return
	}
	if details := req.validate(); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	cw, err := h.svc.RegisterCopy(r.Context(), req.ISBN, req.Title, req.Author)
	if err != nil {
		var mismatch *catalog.MetadataMismatchError
		if errors.As(err, &mismatch) {
			httpx.JSONError(w, r, http.StatusConflict, "ISBN_METADATA_MISMATCH", mismatch.Error(), nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, cw)
}

// List handles GET /v1/books?search=&page=&page_size=
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = 20
	}

	q := Query{
		Search: query.Get("search"),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	copies, total, err := h.svc.List(r.Context(), q)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, copies, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Get handles GET /v1/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Book id is required", nil)
		return
	}

	cw, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "BOOK_NOT_FOUND", "Book copy not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, cw, nil)
}
