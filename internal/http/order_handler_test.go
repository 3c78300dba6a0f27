package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TDila/smart-cart/internal/domain"
	"github.com/TDila/smart-cart/internal/service"
)

func newTestOrder(userID int64) *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      domain.OrderStatusCreated,
		TotalAmount: mustDecimal("25.00"),
		Lines: []domain.OrderLine{
			{ProductID: 1, ProductName: "Laptop", Quantity: 2, UnitPrice: mustDecimal("10.00")},
			{ProductID: 2, ProductName: "Mouse", Quantity: 1, UnitPrice: mustDecimal("5.00")},
		},
		CreatedAt: time.Now(),
	}
}

func TestPlaceOrder_Handler_Success(t *testing.T) {
	cart := domain.NewCart(1)
	cart.UpsertLine(1, "Laptop", 2, mustDecimal("10.00"))
	orderRepo := &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
	runner := &fakeRunner{
		cart:      cart,
		inventory: map[int64]int{1: 5},
		orders:    orderRepo,
	}

	handler := NewOrderHandler(service.NewOrderService(runner, orderRepo, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/api/v1/orders", nil))

	handler.PlaceOrder(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	var response domain.Order
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.TotalAmount.Equal(mustDecimal("20.00")) {
		t.Errorf("expected total 20.00, got %s", response.TotalAmount)
	}
	if runner.cart != nil {
		t.Errorf("expected cart retired after placement")
	}
}

func TestPlaceOrder_Handler_EmptyCart(t *testing.T) {
	orderRepo := &fakeOrderRepo{}
	runner := &fakeRunner{cart: domain.NewCart(1), orders: orderRepo}

	handler := NewOrderHandler(service.NewOrderService(runner, orderRepo, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/api/v1/orders", nil))

	handler.PlaceOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestPlaceOrder_Handler_InsufficientInventory(t *testing.T) {
	cart := domain.NewCart(1)
	cart.UpsertLine(1, "Laptop", 6, mustDecimal("10.00"))
	orderRepo := &fakeOrderRepo{}
	runner := &fakeRunner{cart: cart, inventory: map[int64]int{1: 5}, orders: orderRepo}

	handler := NewOrderHandler(service.NewOrderService(runner, orderRepo, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/api/v1/orders", nil))

	handler.PlaceOrder(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("expected %d, got %d", http.StatusConflict, recorder.Code)
	}
}

func TestGetOrder_Handler_Success(t *testing.T) {
	order := newTestOrder(1)
	orderRepo := &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{order.ID: order}}

	handler := NewOrderHandler(service.NewOrderService(nil, orderRepo, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("GET", "/api/v1/orders/"+order.ID.String(), nil))
	request = withURLParam(request, "order_id", order.ID.String())

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestGetOrder_Handler_WrongUser(t *testing.T) {
	order := newTestOrder(99) // belongs to someone else
	orderRepo := &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{order.ID: order}}

	handler := NewOrderHandler(service.NewOrderService(nil, orderRepo, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("GET", "/api/v1/orders/"+order.ID.String(), nil))
	request = withURLParam(request, "order_id", order.ID.String())

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestGetOrder_Handler_BadID(t *testing.T) {
	handler := NewOrderHandler(service.NewOrderService(nil, &fakeOrderRepo{}, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("GET", "/api/v1/orders/not-a-uuid", nil))
	request = withURLParam(request, "order_id", "not-a-uuid")

	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestListOrders_Handler(t *testing.T) {
	order := newTestOrder(1)
	orderRepo := &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{order.ID: order}}

	handler := NewOrderHandler(service.NewOrderService(nil, orderRepo, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("GET", "/api/v1/orders", nil))

	handler.ListOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var response []domain.Order
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("expected 1 order, got %d", len(response))
	}
	if response[0].Lines[0].ProductName != "Laptop" {
		t.Errorf("expected product name 'Laptop', got '%s'", response[0].Lines[0].ProductName)
	}
}

func TestListOrders_Handler_EmptyIsBracketList(t *testing.T) {
	handler := NewOrderHandler(service.NewOrderService(nil, &fakeOrderRepo{}, noopCache{}))
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("GET", "/api/v1/orders", nil))

	handler.ListOrders(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	if body := recorder.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}
