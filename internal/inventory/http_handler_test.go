package inventory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libraryapi/internal/catalog"
	"libraryapi/internal/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *HTTPHandler {
	cat := catalog.NewMemoryRepo()
	return NewHTTPHandler(NewService(NewMemoryRepo(cat), catalog.NewService(cat)))
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Error.Code
}

func TestHTTPHandler_RegisterCopy(t *testing.T) {
	handler := newTestHandler()

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/books",
			strings.NewReader(`{"isbn":"978-0-13-468599-1","title":"The Go Programming Language","author":"Alan A. A. Donovan"}`))

		handler.RegisterCopy(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp httpx.SuccessResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
	})

	t.Run("second copy of same isbn", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/books",
			strings.NewReader(`{"isbn":"9780134685991","title":"The Go Programming Language","author":"Alan A. A. Donovan"}`))

		handler.RegisterCopy(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("metadata mismatch", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/books",
			strings.NewReader(`{"isbn":"9780134685991","title":"A Different Title","author":"Alan A. A. Donovan"}`))

		handler.RegisterCopy(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ISBN_METADATA_MISMATCH", decodeErrorCode(t, w))
	})

	t.Run("missing fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(`{"isbn":" "}`))

		handler.RegisterCopy(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp httpx.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Len(t, resp.Error.Details, 3)
	})

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(`{`))

		handler.RegisterCopy(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_List(t *testing.T) {
	handler := newTestHandler()
	for _, body := range []string{
		`{"isbn":"9780134685991","title":"The Go Programming Language","author":"Alan A. A. Donovan"}`,
		`{"isbn":"9780596517748","title":"JavaScript: The Good Parts","author":"Douglas Crockford"}`,
	} {
		w := httptest.NewRecorder()
		handler.RegisterCopy(w, httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("lists all copies", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []CopyWithCatalog `json:"data"`
			Meta map[string]any    `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp.Data, 2)
		assert.EqualValues(t, 2, resp.Meta["total"])
	})

	t.Run("search filters by title", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?search=javascript", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []CopyWithCatalog `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "JavaScript: The Good Parts", resp.Data[0].Title)
	})

	t.Run("oversized page_size falls back to default", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?page_size=500", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Meta map[string]any `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.EqualValues(t, 20, resp.Meta["page_size"])
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	handler := newTestHandler()

	w := httptest.NewRecorder()
	handler.RegisterCopy(w, httptest.NewRequest(http.MethodPost, "/v1/books",
		strings.NewReader(`{"isbn":"9780134685991","title":"The Go Programming Language","author":"Alan A. A. Donovan"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data CopyWithCatalog `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/"+created.Data.ID, nil)
		r.SetPathValue("id", created.Data.ID)

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/missing", nil)
		r.SetPathValue("id", "missing")

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "BOOK_NOT_FOUND", decodeErrorCode(t, w))
	})
}
