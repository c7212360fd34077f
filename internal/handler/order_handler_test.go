package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecommerce-async/order-service/internal/events"
	"github.com/ecommerce-async/order-service/internal/repository"
	"github.com/ecommerce-async/order-service/internal/service"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, event events.OrderCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newTestRouter(publisher service.EventPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	repo := repository.NewOrderRepository()
	svc := service.NewOrderService(repo, publisher, logger)
	h := NewOrderHandler(svc, logger)

	router := gin.New()
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/count", h.CountOrders)
		orders.GET("/:id", h.GetOrder)
	}
	return router
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("valid request returns 201 with the stored order", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil).Once()
		router := newTestRouter(publisher)

		body := `{"customerName":"Ana","product":"Headphones","amount":199.90}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["orderId"])
		assert.Equal(t, "Ana", resp["customerName"])
		assert.Equal(t, "Headphones", resp["product"])
		assert.Equal(t, 199.90, resp["amount"])
		assert.NotEmpty(t, resp["createdAt"])

		publisher.AssertExpectations(t)
	})

	t.Run("invalid bodies return 400", func(t *testing.T) {
		cases := []struct {
			name string
			body string
		}{
			{"not json", "nope"},
			{"missing fields", `{"customerName":"Ana"}`},
			{"zero amount", `{"customerName":"Ana","product":"Headphones","amount":0}`},
			{"negative amount", `{"customerName":"Ana","product":"Headphones","amount":-5}`},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				publisher := new(MockEventPublisher)
				router := newTestRouter(publisher)

				w := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				publisher.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("publish failure returns 502 but keeps the order readable", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).
			Return(errors.New("broker unreachable")).Once()
		router := newTestRouter(publisher)

		body := `{"customerName":"Ana","product":"Headphones","amount":199.90}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadGateway, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["orderId"])

		// The inconsistency window is documented behavior: the order
		// is there even though creation reported a failure.
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)
	router := newTestRouter(publisher)

	body := `{"customerName":"Ana","product":"Headphones","amount":199.90}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Ana", resp["customerName"])
	})

	t.Run("absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_ListAndCount(t *testing.T) {
	publisher := new(MockEventPublisher)
	publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)
	router := newTestRouter(publisher)

	for _, body := range []string{
		`{"customerName":"Ana","product":"Headphones","amount":199.90}`,
		`{"customerName":"Bruno","product":"Keyboard","amount":350.00}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})

	t.Run("count", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/count", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", strings.TrimSpace(w.Body.String()))
	})
}
