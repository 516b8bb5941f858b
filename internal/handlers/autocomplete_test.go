package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAutocompleter struct {
	suggestions []string
	err         error
	gotQuery    string
}

func (s *stubAutocompleter) Autocomplete(_ context.Context, query string) ([]string, error) {
	s.gotQuery = query
	return s.suggestions, s.err
}

func newAutocompleteRouter(geo Autocompleter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAutocompleteHandler(geo, testLogger())
	router.POST("/autocomplete", h.Autocomplete)
	return router
}

// TestAutocompleteHappyPath returns the suggestions list as-is.
func TestAutocompleteHappyPath(t *testing.T) {
	stub := &stubAutocompleter{suggestions: []string{
		"MG Road, Bengaluru, Karnataka, India",
		"MG Road, Kochi, Kerala, India",
	}}
	router := newAutocompleteRouter(stub)

	w := postJSON(t, router, "/autocomplete", gin.H{"query": "mg road"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mg road", stub.gotQuery)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response["status"])

	data := response["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "MG Road, Bengaluru, Karnataka, India", data[0])
}

// TestAutocompleteEmptyResult serializes as an empty array, not null.
func TestAutocompleteEmptyResult(t *testing.T) {
	router := newAutocompleteRouter(&stubAutocompleter{})

	w := postJSON(t, router, "/autocomplete", gin.H{"query": "zzzz"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

// TestAutocompleteUpstreamFailure maps provider errors to a generic 500.
func TestAutocompleteUpstreamFailure(t *testing.T) {
	router := newAutocompleteRouter(&stubAutocompleter{err: assert.AnError})

	w := postJSON(t, router, "/autocomplete", gin.H{"query": "mg road"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "autocomplete failed", response["message"])
}

// TestAutocompleteMissingQuery rejects empty bodies.
func TestAutocompleteMissingQuery(t *testing.T) {
	router := newAutocompleteRouter(&stubAutocompleter{})

	w := postJSON(t, router, "/autocomplete", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
