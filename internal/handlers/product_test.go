package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/minhtran205/fashion-shop/internal/middleware/auth"
	"github.com/minhtran205/fashion-shop/internal/models"
	"github.com/minhtran205/fashion-shop/internal/testutil"
)

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")

	rec, c := newJSONContext(t, e, http.MethodPost, "/api/products", map[string]any{
		"name":        "linen shirt",
		"description": "summer fit",
		"price":       39.9,
		"category_id": category.ID,
		"stock":       12,
		"sizes":       []string{"S", "M", "L"},
		"colors":      []string{"white"},
	})
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "linen shirt", got.Name)
	assert.Equal(t, uint(12), got.Stock)
	assert.Equal(t, models.StringList{"S", "M", "L"}, got.Sizes)
}

func TestCreateProduct_Validation(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"category_id": category.ID}},
		{"missing category", map[string]any{"name": "tee"}},
		{"unknown category", map[string]any{"name": "tee", "category_id": 999}},
		{"negative price", map[string]any{"name": "tee", "category_id": category.ID, "price": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, c := newJSONContext(t, e, http.MethodPost, "/api/products", tc.body)
			requireHTTPError(t, h.CreateProduct(c), http.StatusBadRequest)
		})
	}
}

func TestUpdateProduct_PatchSemantics(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")
	product := testutil.CreateProduct(t, db, category.ID, "tee", 10, 5)

	rec, c := newJSONContext(t, e, http.MethodPut, "/", map[string]any{"price": 15.5})
	setIDParam(c, product.ID)
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, 15.5, got.Price)
	assert.Equal(t, "tee", got.Name, "absent fields must stay untouched")
	assert.Equal(t, uint(5), got.Stock)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()

	_, c := newJSONContext(t, e, http.MethodPut, "/", map[string]any{"price": 1})
	setIDParam(c, 404)
	requireHTTPError(t, h.UpdateProduct(c), http.StatusNotFound)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")
	product := testutil.CreateProduct(t, db, category.ID, "tee", 10, 5)

	rec, c := newJSONContext(t, e, http.MethodDelete, "/", nil)
	setIDParam(c, product.ID)
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = newJSONContext(t, e, http.MethodDelete, "/", nil)
	setIDParam(c, product.ID)
	requireHTTPError(t, h.DeleteProduct(c), http.StatusNotFound)
}

func TestGetProducts_PaginationAndFilters(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	shirts := testutil.CreateCategory(t, db, "shirts")
	shoes := testutil.CreateCategory(t, db, "shoes")

	for i := 0; i < 10; i++ {
		testutil.CreateProduct(t, db, shirts.ID, "shirt", 10, 5)
	}
	testutil.CreateProduct(t, db, shoes.ID, "runner", 50, 5)

	type listResponse struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Page       int   `json:"page"`
			Size       int   `json:"size"`
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
			HasPrev    bool  `json:"has_prev"`
			HasNext    bool  `json:"has_next"`
		} `json:"meta"`
	}

	// first page with the default size of 8
	rec, c := newJSONContext(t, e, http.MethodGet, "/api/products", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 8)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, int64(2), resp.Meta.TotalPages)
	assert.False(t, resp.Meta.HasPrev)
	assert.True(t, resp.Meta.HasNext)

	// second page holds the remainder
	rec, c = newJSONContext(t, e, http.MethodGet, "/api/products?page=2", nil)
	require.NoError(t, h.GetProducts(c))
	resp = listResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 3)
	assert.True(t, resp.Meta.HasPrev)
	assert.False(t, resp.Meta.HasNext)

	// keyword filter
	rec, c = newJSONContext(t, e, http.MethodGet, "/api/products?keyword=run", nil)
	require.NoError(t, h.GetProducts(c))
	resp = listResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "runner", resp.Data[0].Name)

	// category filter populates the category link
	rec, c = newJSONContext(t, e, http.MethodGet, "/api/products?category="+fmtID(shoes.ID), nil)
	require.NoError(t, h.GetProducts(c))
	resp = listResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Data[0].Category)
	assert.Equal(t, "shoes", resp.Data[0].Category.Name)
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")
	product := testutil.CreateProduct(t, db, category.ID, "tee", 10, 5)

	rec, c := newJSONContext(t, e, http.MethodGet, "/", nil)
	setIDParam(c, product.ID)
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Category)
	assert.Equal(t, "shirts", got.Category.Name)

	_, c = newJSONContext(t, e, http.MethodGet, "/", nil)
	setIDParam(c, 404)
	requireHTTPError(t, h.GetProduct(c), http.StatusNotFound)
}

func TestCreateReview_RecomputesRating(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")
	product := testutil.CreateProduct(t, db, category.ID, "tee", 10, 5)
	alice := testutil.CreateUser(t, db, "alice", "alice@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", "bob@example.com", models.RoleUser)

	review := func(user *models.User, rating uint) error {
		_, c := newJSONContext(t, e, http.MethodPost, "/", map[string]any{
			"rating": rating, "comment": "nice",
		})
		setIDParam(c, product.ID)
		auth.SetCurrentUser(c, user)
		return h.CreateReview(c)
	}

	require.NoError(t, review(alice, 5))
	require.NoError(t, review(bob, 2))

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, uint(2), got.NumReviews)
	assert.InDelta(t, 3.5, got.Rating, 0.001)
}

func TestCreateReview_OnePerUser(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")
	product := testutil.CreateProduct(t, db, category.ID, "tee", 10, 5)
	user := testutil.CreateUser(t, db, "alice", "alice@example.com", models.RoleUser)

	_, c := newJSONContext(t, e, http.MethodPost, "/", map[string]any{"rating": 4, "comment": "ok"})
	setIDParam(c, product.ID)
	auth.SetCurrentUser(c, user)
	require.NoError(t, h.CreateReview(c))

	_, c = newJSONContext(t, e, http.MethodPost, "/", map[string]any{"rating": 1, "comment": "changed my mind"})
	setIDParam(c, product.ID)
	auth.SetCurrentUser(c, user)
	requireHTTPError(t, h.CreateReview(c), http.StatusBadRequest)

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, uint(1), got.NumReviews)
	assert.InDelta(t, 4, got.Rating, 0.001)
}

func TestCreateReview_Validation(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	h := &ProductHandler{DB: db}
	e := echo.New()
	category := testutil.CreateCategory(t, db, "shirts")
	product := testutil.CreateProduct(t, db, category.ID, "tee", 10, 5)
	user := testutil.CreateUser(t, db, "alice", "alice@example.com", models.RoleUser)

	// rating out of range
	_, c := newJSONContext(t, e, http.MethodPost, "/", map[string]any{"rating": 6, "comment": "x"})
	setIDParam(c, product.ID)
	auth.SetCurrentUser(c, user)
	requireHTTPError(t, h.CreateReview(c), http.StatusBadRequest)

	// empty comment
	_, c = newJSONContext(t, e, http.MethodPost, "/", map[string]any{"rating": 4})
	setIDParam(c, product.ID)
	auth.SetCurrentUser(c, user)
	requireHTTPError(t, h.CreateReview(c), http.StatusBadRequest)

	// unknown product
	_, c = newJSONContext(t, e, http.MethodPost, "/", map[string]any{"rating": 4, "comment": "x"})
	setIDParam(c, 999)
	auth.SetCurrentUser(c, user)
	requireHTTPError(t, h.CreateReview(c), http.StatusNotFound)
}
