package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookRow struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
}

func listBooks(t *testing.T, ta *testApp, query string) []bookRow {
	t.Helper()
	resp, body := ta.do(t, "GET", "/api/v1/books"+query, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Books []bookRow `json:"books"`
		Count int       `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, len(out.Books), out.Count)
	return out.Books
}

func ids(rows []bookRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestCatalogBooks(t *testing.T) {
	ta := newTestApp(t, nil)

	all := listBooks(t, ta, "")
	require.Equal(t, []string{"book-a", "book-b", "book-p"}, ids(all))
	assert.Equal(t, 12.50, all[2].Price)
	assert.Equal(t, "Poetry", all[2].CategoryName)

	assert.Equal(t, []string{"book-p"}, ids(listBooks(t, ta, "?category=poetry")))
	assert.Equal(t, []string{"book-p"}, ids(listBooks(t, ta, "?q=POET")))
	assert.Empty(t, listBooks(t, ta, "?category=travel"))
	assert.Len(t, listBooks(t, ta, "?limit=1"), 1)

	resp, body := ta.do(t, "POST", "/api/v1/orders", orderBody("buyer-1", [2]any{"book-b", 2}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, []string{"book-a", "book-p"}, ids(listBooks(t, ta, "?in_stock=true")))
}

func TestCatalogRejectsBadFilters(t *testing.T) {
	ta := newTestApp(t, nil)

	for _, q := range []string{"?q=%3Cscript%3E", "?category=..%2Fetc"} {
		resp, body := ta.do(t, "GET", "/api/v1/books"+q, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "invalid_request", decodeError(t, body).Error, q)
	}
}

func TestCatalogCategories(t *testing.T) {
	ta := newTestApp(t, nil)

	resp, body := ta.do(t, "GET", "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Categories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Categories, 3)
	assert.Equal(t, "Fiction", out.Categories[0].Name)
	assert.Equal(t, "travel", out.Categories[2].ID)
}

func TestBookAvailability(t *testing.T) {
	ta := newTestApp(t, nil)

	check := func(id string) (int, map[string]any) {
		resp, body := ta.do(t, "GET", "/api/v1/books/"+id+"/availability", nil)
		var out map[string]any
		require.NoError(t, json.Unmarshal(body, &out), string(body))
		return resp.StatusCode, out
	}

	code, a := check("book-b")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "LOW_STOCK", a["status"])
	assert.Equal(t, float64(2), a["stock"])

	resp, body := ta.do(t, "POST", "/api/v1/orders", orderBody("buyer-2", [2]any{"book-b", 2}))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	_, a = check("book-b")
	assert.Equal(t, "OUT_OF_STOCK", a["status"])

	code, a = check("nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "book_not_found", a["error"])
}
