package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibecommerce/storefront/internal/domain"
	"github.com/vibecommerce/storefront/internal/orders"
)

var (
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrInvalidCustomer = errors.New("customer name and email are required")
	ErrInvalidEmail    = errors.New("invalid email format")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CartManager is the slice of the cart service checkout needs.
type CartManager interface {
	GetCart(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
	Clear(ctx context.Context, owner domain.Owner) (*domain.Cart, error)
}

// OrderStore persists the order snapshot and lists past orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *orders.Order) error
	ListOrdersByUser(ctx context.Context, userID string) ([]*orders.Order, error)
}

// Sender delivers the order confirmation. Delivery is best-effort; a failed
// send never fails the checkout.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, order *orders.Order) error
}

// Receipt is what the customer gets back after a successful checkout.
type Receipt struct {
	OrderNumber   string             `json:"orderNumber"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	Items         []orders.OrderItem `json:"items"`
	Total         float64            `json:"total"`
	Timestamp     time.Time          `json:"timestamp"`
	Status        orders.Status      `json:"status"`
	EmailSent     bool               `json:"emailSent"`
}

type Service struct {
	carts  CartManager
	orders OrderStore
	sender Sender
}

func NewService(carts CartManager, orderStore OrderStore, sender Sender) *Service {
	return &Service{
		carts:  carts,
		orders: orderStore,
		sender: sender,
	}
}

// Checkout snapshots the owner's cart into an immutable order, clears the
// cart's items (the cart record survives) and sends a confirmation.
func (s *Service) Checkout(ctx context.Context, owner domain.Owner, customerName, customerEmail string) (*Receipt, error) {
	customerName = strings.TrimSpace(customerName)
	customerEmail = strings.TrimSpace(customerEmail)
	if customerName == "" || customerEmail == "" {
		return nil, ErrInvalidCustomer
	}
	if !emailPattern.MatchString(customerEmail) {
		return nil, ErrInvalidEmail
	}

	cart, err := s.carts.GetCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]orders.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = orders.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	order := &orders.Order{
		ID:            uuid.New(),
		OrderNumber:   newOrderNumber(),
		UserID:        owner.ID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         items,
		Total:         cart.Total,
		Status:        orders.StatusCompleted,
		CreatedAt:     time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	emailSent := true
	if errSend := s.sender.SendOrderConfirmation(ctx, order); errSend != nil {
		log.Printf("order confirmation email failed for %s: %v", order.OrderNumber, errSend)
		emailSent = false
	}

	// Order is persisted; a failed clear leaves stale cart items behind but
	// must not fail the checkout.
	if _, errClear := s.carts.Clear(ctx, owner); errClear != nil {
		log.Printf("failed to clear cart after checkout %s: %v", order.OrderNumber, errClear)
	}

	return &Receipt{
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Items:         order.Items,
		Total:         order.Total,
		Timestamp:     order.CreatedAt,
		Status:        order.Status,
		EmailSent:     emailSent,
	}, nil
}

// ListOrders returns the owner's past orders, newest first.
func (s *Service) ListOrders(ctx context.Context, owner domain.Owner) ([]*orders.Order, error) {
	return s.orders.ListOrdersByUser(ctx, owner.ID)
}

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newOrderNumber() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderNumberCharset[rand.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
