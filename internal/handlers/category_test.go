package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran205/fashion-shop/internal/models"
	"github.com/minhtran205/fashion-shop/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()

	rec, c := newJSONContext(t, e, http.MethodPost, "/api/categories", map[string]any{"name": "men"})
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var parent models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parent))
	assert.Equal(t, "men", parent.Name)
	assert.Nil(t, parent.ParentID)

	// subcategory under it
	rec, c = newJSONContext(t, e, http.MethodPost, "/api/categories", map[string]any{
		"name": "jackets", "parent_id": parent.ID,
	})
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var child models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &child))
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateCategory_Validation(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()

	_, c := newJSONContext(t, e, http.MethodPost, "/api/categories", map[string]any{"name": ""})
	requireHTTPError(t, h.CreateCategory(c), http.StatusBadRequest)

	_, c = newJSONContext(t, e, http.MethodPost, "/api/categories", map[string]any{
		"name": "jackets", "parent_id": 999,
	})
	requireHTTPError(t, h.CreateCategory(c), http.StatusBadRequest)
}

func TestUpdateCategory(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "men")

	rec, c := newJSONContext(t, e, http.MethodPut, "/", map[string]any{"name": "menswear"})
	setIDParam(c, category.ID)
	require.NoError(t, h.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Category
	require.NoError(t, db.First(&got, category.ID).Error)
	assert.Equal(t, "menswear", got.Name)
}

func TestUpdateCategory_RejectsSelfParent(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "men")

	_, c := newJSONContext(t, e, http.MethodPut, "/", map[string]any{"parent_id": category.ID})
	setIDParam(c, category.ID)
	requireHTTPError(t, h.UpdateCategory(c), http.StatusBadRequest)
}

func TestUpdateCategory_NotFound(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()

	_, c := newJSONContext(t, e, http.MethodPut, "/", map[string]any{"name": "x"})
	setIDParam(c, 404)
	requireHTTPError(t, h.UpdateCategory(c), http.StatusNotFound)
}

func TestDeleteCategory_RefusesWhileReferenced(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()

	withProducts := testutil.CreateCategory(t, db, "men")
	testutil.CreateProduct(t, db, withProducts.ID, "tee", 10, 5)

	_, c := newJSONContext(t, e, http.MethodDelete, "/", nil)
	setIDParam(c, withProducts.ID)
	requireHTTPError(t, h.DeleteCategory(c), http.StatusConflict)

	withChildren := testutil.CreateCategory(t, db, "women")
	require.NoError(t, db.Create(&models.Category{Name: "dresses", ParentID: &withChildren.ID}).Error)

	_, c = newJSONContext(t, e, http.MethodDelete, "/", nil)
	setIDParam(c, withChildren.ID)
	requireHTTPError(t, h.DeleteCategory(c), http.StatusConflict)
}

func TestDeleteCategory(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "empty")

	rec, c := newJSONContext(t, e, http.MethodDelete, "/", nil)
	setIDParam(c, category.ID)
	require.NoError(t, h.DeleteCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Zero(t, count)

	// deleting it again is a 404
	_, c = newJSONContext(t, e, http.MethodDelete, "/", nil)
	setIDParam(c, category.ID)
	requireHTTPError(t, h.DeleteCategory(c), http.StatusNotFound)
}

func TestGetCategories(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &CategoryHandler{DB: db}
	e := echo.New()
	testutil.CreateCategory(t, db, "men")
	testutil.CreateCategory(t, db, "women")

	rec, c := newJSONContext(t, e, http.MethodGet, "/api/categories", nil)
	require.NoError(t, h.GetCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "men", categories[0].Name)
}
