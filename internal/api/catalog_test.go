package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTags(t *testing.T) {
	a := setupTestAPI(t)
	breakfast := testhelpers.CreateTag(t, a.db, "breakfast")
	testhelpers.CreateTag(t, a.db, "dinner")

	w := a.performRequest(http.MethodGet, "/api/tags/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tags []types.TagResponse
	decode(t, w, &tags)
	assert.Len(t, tags, 2)

	w = a.performRequest(http.MethodGet, fmt.Sprintf("/api/tags/%d/", breakfast.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tag types.TagResponse
	decode(t, w, &tag)
	assert.Equal(t, "breakfast", tag.Slug)

	w = a.performRequest(http.MethodGet, "/api/tags/999/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientSearch(t *testing.T) {
	a := setupTestAPI(t)
	testhelpers.CreateIngredient(t, a.db, "Мука пшеничная", "г")
	testhelpers.CreateIngredient(t, a.db, "Мускатный орех", "г")
	milk := testhelpers.CreateIngredient(t, a.db, "Молоко", "мл")

	w := a.performRequest(http.MethodGet, "/api/ingredients/?name=%D0%BC%D1%83", nil, "") // "му"
	require.Equal(t, http.StatusOK, w.Code)
	var found []types.IngredientResponse
	decode(t, w, &found)
	require.Len(t, found, 2)
	assert.Equal(t, "Мука пшеничная", found[0].Name)

	w = a.performRequest(http.MethodGet, "/api/ingredients/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &found)
	assert.Len(t, found, 3)

	w = a.performRequest(http.MethodGet, fmt.Sprintf("/api/ingredients/%d/", milk.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var ingredient types.IngredientResponse
	decode(t, w, &ingredient)
	assert.Equal(t, "мл", ingredient.MeasurementUnit)
}

func TestHealthCheck(t *testing.T) {
	a := setupTestAPI(t)

	w := a.performRequest(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
