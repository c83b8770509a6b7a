// Package checkout turns the cart and session into a placed order.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"restaurant/client/api"
	"restaurant/client/cart"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"

	LoginRedirect = "/login?redirect=/cart"
)

var (
	ErrSubmitInProgress        = errors.New("checkout: an order is already being submitted")
	ErrEmptyCart               = errors.New("checkout: cart is empty")
	ErrInvalidOrderType        = errors.New("checkout: order type must be dine_in, takeaway or delivery")
	ErrDeliveryAddressRequired = errors.New("checkout: delivery address is required")
)

// LoginRequiredError means the user must log in first; Redirect brings them
// back to the cart afterwards.
type LoginRequiredError struct {
	Redirect string
}

func (e *LoginRequiredError) Error() string { return "checkout: login required" }

// SubmitError is a failed order request. The cart is left untouched and the
// same Submit may be retried.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return fmt.Sprintf("checkout: failed to place order: %v", e.Err) }
func (e *SubmitError) Unwrap() error { return e.Err }

type OrderPlacer interface {
	CreateOrder(ctx context.Context, token, idempotencyKey string, req *api.CreateOrderRequest) (*api.CreateOrderResponse, error)
}

// Identity is satisfied by *session.Session.
type Identity interface {
	Authenticated() bool
	Token() string
}

type Details struct {
	OrderType       string
	TableNumber     string
	DeliveryAddress string
	Notes           string
}

type Result struct {
	OrderID    uint
	Message    string
	StatusPath string // where the order status view lives
}

type Flow struct {
	cart     *cart.Store
	identity Identity
	orders   OrderPlacer
	log      *zap.Logger

	inFlight atomic.Bool

	mu         sync.Mutex
	pendingKey string // reused while retrying the same payload
	pendingSig []byte
}

func New(c *cart.Store, id Identity, orders OrderPlacer, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{cart: c, identity: id, orders: orders, log: log}
}

// Submitting reports whether a request is outstanding; UIs disable the
// submit control while it is true.
func (f *Flow) Submitting() bool { return f.inFlight.Load() }

// Submit places one order from the current cart. Only one Submit runs at a
// time; a concurrent call gets ErrSubmitInProgress without touching the network.
// On success only the submitted lines leave the cart, so items added while the
// request was outstanding are kept for the next order.
func (f *Flow) Submit(ctx context.Context, d Details) (*Result, error) {
	if !f.identity.Authenticated() {
		return nil, &LoginRequiredError{Redirect: LoginRedirect}
	}
	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer f.inFlight.Store(false)

	snapshot := f.cart.State()
	req, err := buildRequest(snapshot, d)
	if err != nil {
		return nil, err
	}
	key, err := f.keyFor(req)
	if err != nil {
		return nil, err
	}

	res, err := f.orders.CreateOrder(ctx, f.identity.Token(), key, req)
	if err != nil {
		f.log.Debug("checkout failed", zap.Int("status", api.StatusOf(err)), zap.Error(err))
		return nil, &SubmitError{Err: err}
	}

	f.mu.Lock()
	f.pendingKey, f.pendingSig = "", nil
	f.mu.Unlock()
	f.cart.RemoveOrdered(snapshot.Items)

	return &Result{
		OrderID:    res.ID,
		Message:    res.Message,
		StatusPath: fmt.Sprintf("/orders/%d", res.ID),
	}, nil
}

func buildRequest(s cart.State, d Details) (*api.CreateOrderRequest, error) {
	if s.Empty() {
		return nil, ErrEmptyCart
	}

	req := &api.CreateOrderRequest{
		Items:     make([]api.OrderItem, 0, len(s.Items)),
		Total:     s.Total,
		OrderType: d.OrderType,
		Notes:     strings.TrimSpace(d.Notes),
	}
	switch d.OrderType {
	case OrderTypeDineIn:
		if t := strings.TrimSpace(d.TableNumber); t != "" {
			req.TableNumber = &t
		}
	case OrderTypeTakeaway:
	case OrderTypeDelivery:
		addr := strings.TrimSpace(d.DeliveryAddress)
		if addr == "" {
			return nil, ErrDeliveryAddressRequired
		}
		req.DeliveryAddress = &addr
	default:
		return nil, ErrInvalidOrderType
	}

	for _, it := range s.Items {
		req.Items = append(req.Items, api.OrderItem{
			ID: it.ID, Name: it.Name, Price: it.Price, ImageURL: it.ImageURL,
			Quantity: it.Quantity, SpecialInstructions: it.SpecialInstructions,
		})
	}
	return req, nil
}

// keyFor keeps one idempotency key per distinct payload so a retry after a
// lost response cannot place the order twice, while an edited cart gets a new key.
func (f *Flow) keyFor(req *api.CreateOrderRequest) (string, error) {
	sig, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingKey == "" || !bytes.Equal(sig, f.pendingSig) {
		f.pendingKey = uuid.NewString()
		f.pendingSig = sig
	}
	return f.pendingKey, nil
}
