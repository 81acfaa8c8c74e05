package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/api/middleware"
	"github.com/feral-file/ff-market-sync/internal/api/rest"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/mocks"
	"github.com/feral-file/ff-market-sync/internal/query"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

const (
	testContract = "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"
	testAPIKey   = "test-api-key"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testHandlerMocks struct {
	ctrl      *gomock.Controller
	engine    *mocks.MockQueryEngine
	publisher *mocks.MockPublisher
	router    *gin.Engine
}

func setupTestHandler(t *testing.T) *testHandlerMocks {
	ctrl := gomock.NewController(t)
	tm := &testHandlerMocks{
		ctrl:      ctrl,
		engine:    mocks.NewMockQueryEngine(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		router:    gin.New(),
	}
	rest.SetupRoutes(tm.router, rest.NewHandler(tm.engine, tm.publisher), middleware.AuthConfig{APIKeys: []string{testAPIKey}})
	return tm
}

func (tm *testHandlerMocks) do(method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	w := tm.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestListTokens_ParsesQuery(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	saleID := "sale-1"
	currency := "ETH"
	tm.engine.EXPECT().
		ListTokens(gomock.Any(), query.Pagination{Page: 2, PerPage: 5}, gomock.Any(), query.SortPriceAsc, domain.Caller{}).
		DoAndReturn(func(_ context.Context, _ query.Pagination, f query.Filter, _ query.SortKey, _ domain.Caller) (*query.TokenPage, error) {
			assert.True(t, f.OnSale)
			assert.Equal(t, []domain.Currency{"ETH", "USDC"}, f.Currencies)
			assert.Equal(t, []string{"generative", "photo"}, f.Categories)
			assert.Equal(t, map[string][]string{"Eyes": {"Red", "Blue"}}, f.Attributes)
			require.NotNil(t, f.MinPrice)
			assert.True(t, decimal.RequireFromString("0.5").Equal(*f.MinPrice))
			assert.Nil(t, f.MaxPrice)
			require.NotNil(t, f.Staked)
			assert.False(t, *f.Staked)

			return &query.TokenPage{
				Items: []query.TokenWithEditions{{
					Token: schema.Token{
						ContractAddress: testContract,
						TokenID:         "1",
						MinSaleID:       &saleID,
						MinSalePrice:    decimal.NewNullDecimal(decimal.RequireFromString("1.25")),
						MinSaleCurrency: &currency,
					},
					Editions: []schema.Edition{{ContractAddress: testContract, TokenID: "1", EditionID: "1"}},
				}},
				Total:   6,
				Page:    2,
				PerPage: 5,
				HasMore: false,
			}, nil
		})

	w := tm.do(http.MethodGet,
		"/api/v1/tokens?page=2&per_page=5&sort=PRICE_ASC&on_sale=true&currency=eth,usdc&category=generative&category=photo"+
			"&attribute=Eyes:Red&attribute=Eyes:Blue&min_price=0.5&staked=false",
		nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.EqualValues(t, 6, body["total"])
	assert.Equal(t, false, body["has_more"])

	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	minSale := item["min_sale"].(map[string]any)
	assert.Equal(t, "sale-1", minSale["id"])
	assert.Equal(t, "1.25", minSale["price"])
	assert.Len(t, item["editions"], 1)
}

func TestListTokens_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "bad price", query: "min_price=cheap"},
		{name: "bad attribute", query: "attribute=Red"},
		{name: "bad bool", query: "on_sale=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tm.ctrl.Finish()

			w := tm.do(http.MethodGet, "/api/v1/tokens?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_query", decodeBody(t, w)["code"])
		})
	}
}

func TestListTokens_EngineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "invalid", err: domain.ErrInvalidQuery, wantCode: http.StatusBadRequest},
		{name: "rates unavailable", err: domain.ErrUpstreamUnavailable, wantCode: http.StatusServiceUnavailable},
		{name: "store failure", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			defer tm.ctrl.Finish()

			tm.engine.EXPECT().ListTokens(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := tm.do(http.MethodGet, "/api/v1/tokens", nil)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestListTokens_DefaultsAndCaller(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	tm.engine.EXPECT().
		ListTokens(gomock.Any(), query.Pagination{Page: 1, PerPage: domain.DEFAULT_PER_PAGE}, gomock.Any(), query.SortKey(""), domain.Caller{IsAdmin: true}).
		Return(&query.TokenPage{Page: 1, PerPage: domain.DEFAULT_PER_PAGE}, nil)

	w := tm.do(http.MethodGet, "/api/v1/tokens", http.Header{"Authorization": {"ApiKey " + testAPIKey}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["items"])
}

func TestListTokens_RejectsBadCredentials(t *testing.T) {
	tm := setupTestHandler(t)
	defer tm.ctrl.Finish()

	w := tm.do(http.MethodGet, "/api/v1/tokens", http.Header{"Authorization": {"ApiKey wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResyncToken(t *testing.T) {
	adminHeader := http.Header{"Authorization": {"ApiKey " + testAPIKey}}
	resyncPath := "/api/v1/tokens/" + testContract + "/42/resync"

	t.Run("publishes update", func(t *testing.T) {
		tm := setupTestHandler(t)
		defer tm.ctrl.Finish()

		want := domain.Notification{
			Operation: domain.OperationUpdateToken,
			Key:       domain.NewTokenKey(testContract, "42").String(),
		}
		tm.publisher.EXPECT().PublishNotification(gomock.Any(), want).Return(nil)

		w := tm.do(http.MethodPost, resyncPath, adminHeader)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, want.Key, decodeBody(t, w)["key"])
	})

	t.Run("requires credentials", func(t *testing.T) {
		tm := setupTestHandler(t)
		defer tm.ctrl.Finish()

		w := tm.do(http.MethodPost, resyncPath, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid key", func(t *testing.T) {
		tm := setupTestHandler(t)
		defer tm.ctrl.Finish()

		w := tm.do(http.MethodPost, "/api/v1/tokens/not-an-address/42/resync", adminHeader)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = tm.do(http.MethodPost, "/api/v1/tokens/"+testContract+"/abc/resync", adminHeader)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("broker unavailable", func(t *testing.T) {
		tm := setupTestHandler(t)
		defer tm.ctrl.Finish()

		tm.publisher.EXPECT().PublishNotification(gomock.Any(), gomock.Any()).Return(errors.New("nats: timeout"))

		w := tm.do(http.MethodPost, resyncPath, adminHeader)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
