package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/refsearch/internal/adapter/httphandler"
	"github.com/niksmo/refsearch/internal/adapter/xlsx"
	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockProductsService struct {
	mock.Mock
}

func (m *MockProductsService) Search(
	ctx context.Context, sid string, p domain.Predicates,
) ([]domain.PricedRow, error) {
	args := m.Called(ctx, sid, p)
	rows, _ := args.Get(0).([]domain.PricedRow)
	return rows, args.Error(1)
}

func (m *MockProductsService) Product(
	ctx context.Context, code string,
) (domain.PricedRow, error) {
	args := m.Called(ctx, code)
	row, _ := args.Get(0).(domain.PricedRow)
	return row, args.Error(1)
}

func (m *MockProductsService) StockingTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]string)
	return types, args.Error(1)
}

func (m *MockProductsService) ExportProducts(
	ctx context.Context, p domain.Predicates, w io.Writer,
) error {
	args := m.Called(ctx, p, w)
	return args.Error(0)
}

type MockSelectionManager struct {
	mock.Mock
}

func (m *MockSelectionManager) AddToSelection(
	ctx context.Context, sid string, e domain.SelectionEntry,
) (bool, error) {
	args := m.Called(ctx, sid, e)
	return args.Bool(0), args.Error(1)
}

func (m *MockSelectionManager) Selection(
	ctx context.Context, sid string,
) ([]domain.SelectionLine, error) {
	args := m.Called(ctx, sid)
	lines, _ := args.Get(0).([]domain.SelectionLine)
	return lines, args.Error(1)
}

func (m *MockSelectionManager) RemoveFromSelection(
	ctx context.Context, sid, code string,
) error {
	return m.Called(ctx, sid, code).Error(0)
}

func (m *MockSelectionManager) ExportSelection(
	ctx context.Context, sid string, w io.Writer,
) error {
	return m.Called(ctx, sid, w).Error(0)
}

func (m *MockSelectionManager) EndSession(ctx context.Context, sid string) error {
	return m.Called(ctx, sid).Error(0)
}

type testAPI struct {
	handler   http.Handler
	products  *MockProductsService
	selection *MockSelectionManager
	cookies   []*http.Cookie
}

func newTestAPI(t *testing.T, creds httphandler.Credentials) *testAPI {
	t.Helper()
	api := &testAPI{
		products:  new(MockProductsService),
		selection: new(MockSelectionManager),
	}
	api.handler = httphandler.NewRouter(httphandler.RouterConfig{
		Searcher:    api.products,
		Exporter:    api.products,
		Selection:   api.selection,
		Sessions:    httphandler.NewSessionStore("0123456789abcdef", time.Hour, false),
		Credentials: creds,
	})
	return api
}

// do sends the request with the cookies of earlier responses.
func (api *testAPI) do(method, target string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range api.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) != 0 {
		api.cookies = cs
	}
	return rec
}

func pricedRow(code string) domain.PricedRow {
	hundred := decimal.NewNullDecimal(decimal.NewFromInt(100))
	return domain.PricedRow{
		CombinedRow: domain.CombinedRow{
			CatalogRow: domain.CatalogRow{
				ItemCode:           code,
				CatalogDescription: "Sensor " + code,
				ListPrice:          hundred,
				StockingType:       "P",
			},
			QtyImmediate: domain.IntOf(3),
		},
		Quote: domain.Quote{
			ListPrice:       hundred,
			DiscountPercent: decimal.NewNullDecimal(decimal.NewFromInt(15)),
			DiscountedPrice: decimal.NewNullDecimal(decimal.NewFromInt(85)),
		},
	}
}

func TestProductsHandler(t *testing.T) {
	t.Run("Search", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		want := domain.Predicates{
			OEE:             "oee",
			LongDescription: "sensor npn",
			StockingTypes:   []string{"P", "S"},
			InStock:         true,
			Query:           "abc",
		}
		api.products.On("Search", mock.Anything, mock.Anything, want).
			Return([]domain.PricedRow{pricedRow("A")}, nil)

		rec := api.do(http.MethodGet,
			"/v1/products?oee=oee&long_desc=sensor+npn&stocking_type=P&stocking_type=S&in_stock=true&q=abc",
			nil,
		)
		require.Equal(t, http.StatusOK, rec.Code)
		api.products.AssertExpectations(t)

		var res httphandler.ProductsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		require.Equal(t, 1, res.Count)
		item := res.Items[0]
		assert.Equal(t, "A", item.ItemCode)
		require.NotNil(t, item.QtyImmediate)
		assert.Equal(t, int64(3), *item.QtyImmediate)
		assert.Nil(t, item.QtyFuture)
		assert.True(t, item.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(85)))
		assert.Equal(t, "€ 85.00", item.Display.DiscountedPrice)
		assert.Equal(t, "15%", item.Display.DiscountPercent)
	})

	t.Run("InvalidInStock", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		rec := api.do(http.MethodGet, "/v1/products?in_stock=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotLoaded", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.products.On("Search", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrNotLoaded)

		rec := api.do(http.MethodGet, "/v1/products", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Product", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.products.On("Product", mock.Anything, "A").Return(pricedRow("A"), nil)
		api.products.On("Product", mock.Anything, "Z").
			Return(nil, domain.ErrNotFound)

		rec := api.do(http.MethodGet, "/v1/products/A", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var p httphandler.Product
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
		assert.Equal(t, "Sensor A", p.CatalogDescription)

		rec = api.do(http.MethodGet, "/v1/products/Z", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("StockingTypes", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.products.On("StockingTypes", mock.Anything).Return([]string{"N", "P"}, nil)

		rec := api.do(http.MethodGet, "/v1/stocking-types", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":["N","P"]}`, rec.Body.String())
	})

	t.Run("Export", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.products.On(
			"ExportProducts", mock.Anything,
			domain.Predicates{StockingTypes: []string{"P"}}, mock.Anything,
		).Run(func(args mock.Arguments) {
			_, _ = args.Get(2).(io.Writer).Write([]byte("xlsx-bytes"))
		}).Return(nil)

		rec := api.do(http.MethodGet, "/v1/products/export?stocking_type=P", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsx.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "Resultados_Busqueda.xlsx")
		assert.Equal(t, "xlsx-bytes", rec.Body.String())
	})

	t.Run("ExportEmpty", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.products.On("ExportProducts", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.ErrEmptyResult)

		rec := api.do(http.MethodGet, "/v1/products/export?q=none", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
	})
}

func TestSelectionHandler(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.selection.On(
			"AddToSelection", mock.Anything, mock.Anything,
			mock.MatchedBy(func(e domain.SelectionEntry) bool {
				return e.ItemCode == "A" && e.Quantity == 2 &&
					e.DiscountOverride.Equal(decimal.NewFromInt(10))
			}),
		).Return(true, nil)

		rec := api.do(http.MethodPost, "/v1/selection", map[string]any{
			"item_code": "A", "quantity": 2, "discount": 10,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"added":true}`, rec.Body.String())
	})

	t.Run("InvalidDiscount", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.selection.On("AddToSelection", mock.Anything, mock.Anything, mock.Anything).
			Return(false, domain.ErrInvalidDiscount)

		rec := api.do(http.MethodPost, "/v1/selection", map[string]any{
			"item_code": "A", "quantity": 1, "discount": 150,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		req := httptest.NewRequest(http.MethodPost, "/v1/selection", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnsupportedMediaType", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		req := httptest.NewRequest(http.MethodPost, "/v1/selection", strings.NewReader("a=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("List", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.selection.On("Selection", mock.Anything, mock.Anything).Return(
			[]domain.SelectionLine{
				{
					SelectionEntry: domain.SelectionEntry{
						ItemCode: "A", Quantity: 2, DiscountOverride: decimal.NewFromInt(10),
					},
					ListPrice:    decimal.NewNullDecimal(decimal.NewFromInt(100)),
					NetUnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(90)),
					LineTotal:    decimal.NewNullDecimal(decimal.NewFromInt(180)),
				},
				{
					SelectionEntry: domain.SelectionEntry{ItemCode: "B", Quantity: 1},
				},
			}, nil,
		)

		rec := api.do(http.MethodGet, "/v1/selection", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var res httphandler.SelectionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, 2, res.Count)
		assert.True(t, res.Total.Equal(decimal.NewFromInt(180)))
		assert.Equal(t, "€ 180.00", res.TotalDisplay)
		assert.Equal(t, "n/a", res.Items[1].Display.LineTotal)
	})

	t.Run("Remove", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.selection.On("RemoveFromSelection", mock.Anything, mock.Anything, "A").Return(nil)
		api.selection.On("RemoveFromSelection", mock.Anything, mock.Anything, "Z").
			Return(domain.ErrNotFound)

		assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/v1/selection/A", nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/v1/selection/Z", nil).Code)
	})

	t.Run("ExportEmpty", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.selection.On("ExportSelection", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.ErrEmptyResult)

		rec := api.do(http.MethodGet, "/v1/selection/export", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestSession(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	creds := httphandler.Credentials{Username: "sales", PasswordHash: string(hash)}

	t.Run("StableSessionID", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		api.products.On("Search", mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.PricedRow{}, nil)

		require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/products", nil).Code)
		require.NotEmpty(t, api.cookies)
		require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/products", nil).Code)

		require.Len(t, api.products.Calls, 2)
		first := api.products.Calls[0].Arguments.String(1)
		second := api.products.Calls[1].Arguments.String(1)
		assert.NotEmpty(t, first)
		assert.Equal(t, first, second)
	})

	t.Run("SessionsDiffer", func(t *testing.T) {
		a := newTestAPI(t, httphandler.Credentials{})
		a.products.On("Search", mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.PricedRow{}, nil)
		a.do(http.MethodGet, "/v1/products", nil)
		a.cookies = nil
		a.do(http.MethodGet, "/v1/products", nil)

		require.Len(t, a.products.Calls, 2)
		assert.NotEqual(t,
			a.products.Calls[0].Arguments.String(1),
			a.products.Calls[1].Arguments.String(1),
		)
	})

	t.Run("LoginGate", func(t *testing.T) {
		api := newTestAPI(t, creds)
		api.products.On("StockingTypes", mock.Anything).Return([]string{"P"}, nil)

		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/v1/stocking-types", nil).Code)

		rec := api.do(http.MethodGet, "/v1/session", nil)
		assert.JSONEq(t, `{"authenticated":false,"auth_required":true}`, rec.Body.String())

		rec = api.do(http.MethodPost, "/v1/session", httphandler.LoginRequest{
			Username: "sales", Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = api.do(http.MethodPost, "/v1/session", httphandler.LoginRequest{
			Username: "sales", Password: "s3cret",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/v1/stocking-types", nil).Code)
	})

	t.Run("Logout", func(t *testing.T) {
		api := newTestAPI(t, creds)
		api.do(http.MethodPost, "/v1/session", httphandler.LoginRequest{
			Username: "sales", Password: "s3cret",
		})
		api.selection.On("EndSession", mock.Anything, mock.Anything).Return(nil)

		rec := api.do(http.MethodDelete, "/v1/session", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		api.selection.AssertCalled(t, "EndSession", mock.Anything, mock.Anything)

		var expired bool
		for _, c := range rec.Result().Cookies() {
			expired = expired || c.MaxAge < 0
		}
		assert.True(t, expired)
	})

	t.Run("LoginDisabled", func(t *testing.T) {
		api := newTestAPI(t, httphandler.Credentials{})
		rec := api.do(http.MethodPost, "/v1/session", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"authenticated":true,"auth_required":false}`, rec.Body.String())
	})
}
