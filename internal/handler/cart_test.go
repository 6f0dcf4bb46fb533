package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-shop/internal/model"
	"github.com/iliyamo/online-shop/internal/repository"
)

// jsonCtx builds an echo context for a handler-level test. Handlers run
// without the middleware chain here, so tests attach the user directly.
func jsonCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, u model.User) { c.Set("user", u) }

var testCustomer = model.User{ID: 7, Name: "Dana", Email: "dana@example.com", Role: model.RoleCustomer}

// fakeCart keeps one user's cart in memory with repository semantics:
// at most one line per product, quantity zero deletes the line.
type fakeCart struct {
	products map[uint64]model.Product
	qty      map[uint64]uint32
}

func newFakeCart(products ...model.Product) *fakeCart {
	f := &fakeCart{products: map[uint64]model.Product{}, qty: map[uint64]uint32{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCart) Add(_ context.Context, _, productID uint64) error {
	f.qty[productID]++
	return nil
}

func (f *fakeCart) SetQuantity(_ context.Context, _, productID uint64, quantity uint32) error {
	if _, ok := f.qty[productID]; !ok {
		return repository.ErrNotFound
	}
	if quantity == 0 {
		delete(f.qty, productID)
		return nil
	}
	f.qty[productID] = quantity
	return nil
}

func (f *fakeCart) Remove(_ context.Context, _, productID uint64) error {
	if _, ok := f.qty[productID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.qty, productID)
	return nil
}

func (f *fakeCart) Clear(_ context.Context, _ uint64) error {
	f.qty = map[uint64]uint32{}
	return nil
}

func (f *fakeCart) List(_ context.Context, _ uint64) ([]model.CartLine, error) {
	lines := make([]model.CartLine, 0, len(f.qty))
	for id, q := range f.qty {
		lines = append(lines, model.CartLine{Product: f.products[id], Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

func decodeLines(t *testing.T, rec *httptest.ResponseRecorder) []model.CartLine {
	t.Helper()
	var lines []model.CartLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	return lines
}

func TestCartAddCreatesThenIncrements(t *testing.T) {
	cart := newFakeCart(model.Product{ID: 1, Name: "Mug", Price: 12})
	h := NewCartHandler(cart)

	c, rec := jsonCtx(http.MethodPost, "/v1/cart", `{"product_id":1}`)
	asUser(c, testCustomer)
	require.NoError(t, h.Add(c))
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decodeLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, uint32(1), lines[0].Quantity)

	// A second add bumps the existing line instead of producing a duplicate.
	c, rec = jsonCtx(http.MethodPost, "/v1/cart", `{"product_id":1}`)
	asUser(c, testCustomer)
	require.NoError(t, h.Add(c))
	lines = decodeLines(t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, uint32(2), lines[0].Quantity)
}

func TestCartAddRequiresProductID(t *testing.T) {
	h := NewCartHandler(newFakeCart())

	c, rec := jsonCtx(http.MethodPost, "/v1/cart", `{}`)
	asUser(c, testCustomer)
	require.NoError(t, h.Add(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartSetQuantityZeroRemovesLine(t *testing.T) {
	cart := newFakeCart(model.Product{ID: 3, Name: "Lamp", Price: 40})
	cart.qty[3] = 2
	h := NewCartHandler(cart)

	c, rec := jsonCtx(http.MethodPut, "/v1/cart/3", `{"quantity":0}`)
	asUser(c, testCustomer)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.UpdateQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeLines(t, rec))
}

func TestCartSetQuantityUnknownProduct(t *testing.T) {
	h := NewCartHandler(newFakeCart())

	c, rec := jsonCtx(http.MethodPut, "/v1/cart/99", `{"quantity":5}`)
	asUser(c, testCustomer)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.UpdateQuantity(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartDeleteWithoutProductClearsAll(t *testing.T) {
	cart := newFakeCart(
		model.Product{ID: 1, Name: "Mug", Price: 12},
		model.Product{ID: 2, Name: "Lamp", Price: 40},
	)
	cart.qty[1] = 1
	cart.qty[2] = 3
	h := NewCartHandler(cart)

	c, rec := jsonCtx(http.MethodDelete, "/v1/cart", "")
	asUser(c, testCustomer)
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeLines(t, rec))
}

func TestCartRequiresUser(t *testing.T) {
	h := NewCartHandler(newFakeCart())

	c, rec := jsonCtx(http.MethodGet, "/v1/cart", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
