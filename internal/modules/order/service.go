package order

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/modules/auth"
	"github.com/georgemunganga/orderdesk/internal/modules/catalog"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
)

// ProductFinder is the catalog lookup used to price new orders.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// SalesDirectory lists the representatives an admin can filter orders by.
type SalesDirectory interface {
	FindApprovedSalesUsers(ctx context.Context) ([]*user.User, error)
}

// Service defines the order management business logic.
type Service interface {
	// CreateOrder prices the items, computes the total and persists the order atomically.
	CreateOrder(ctx context.Context, caller auth.Identity, req CreateRequest) (*Order, error)

	// ListOrders returns every order matching the filter, newest first.
	ListOrders(ctx context.Context, status string, salesUserID int64) ([]*Order, error)

	// ListMyOrders returns the caller's own orders, newest first.
	ListMyOrders(ctx context.Context, caller auth.Identity, status string) ([]*Order, error)

	// GetOrder returns a full order. Sales callers may only read their own.
	GetOrder(ctx context.Context, caller auth.Identity, id int64) (*Order, error)

	// UpdateOrderStatus sets any valid status, regardless of the current one.
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*Order, error)

	CountUnnotified(ctx context.Context) (int, error)
	ListUnnotified(ctx context.Context) ([]*Order, error)
	MarkNotified(ctx context.Context, id int64) error
	MarkAllNotified(ctx context.Context) error

	// DeleteOrder removes an order and its items. Only the owner or an admin may do so.
	DeleteOrder(ctx context.Context, caller auth.Identity, id int64) error

	// SalesUsers lists approved sales representatives.
	SalesUsers(ctx context.Context) ([]*user.User, error)
}

type service struct {
	repo     Repository
	products ProductFinder
	sales    SalesDirectory
}

// NewService creates a new order service.
func NewService(repo Repository, products ProductFinder, sales SalesDirectory) Service {
	return &service{repo: repo, products: products, sales: sales}
}

func (s *service) CreateOrder(ctx context.Context, caller auth.Identity, req CreateRequest) (*Order, error) {
	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" || len(req.Items) == 0 {
		return nil, apperr.InvalidInput("Client name and at least one item are required")
	}

	o := &Order{
		SalesUserID:    caller.ID,
		ClientName:     clientName,
		ClientEmail:    strings.TrimSpace(req.ClientEmail),
		ClientPhone:    strings.TrimSpace(req.ClientPhone),
		ClientLocation: strings.TrimSpace(req.ClientLocation),
		Notes:          req.Notes,
		Status:         StatusPending,
		TotalAmount:    decimal.Zero,
	}

	for i, in := range req.Items {
		item, err := s.priceItem(ctx, i, in)
		if err != nil {
			return nil, err
		}
		o.TotalAmount = o.TotalAmount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		o.Items = append(o.Items, item)
	}

	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, apperr.Internal(err, "Failed to create order")
	}
	log.WithFields(log.Fields{
		"order_id":      id,
		"sales_user_id": caller.ID,
		"items":         len(o.Items),
		"total":         o.TotalAmount.StringFixed(2),
	}).Info("Order created")

	return s.repo.GetByID(ctx, id)
}

// priceItem resolves one requested line against the catalog.
func (s *service) priceItem(ctx context.Context, i int, in ItemRequest) (*Item, error) {
	productID, ok := parseID(in.ProductID)
	if !ok {
		return nil, apperr.InvalidInput("Item %d: product_id is required", i+1)
	}

	p, err := s.products.FindByID(ctx, productID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.NotFound("Product with ID %d not found", productID)
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperr.Unavailable("Product %q is not available", p.Name)
	}

	price := p.RetailPrice
	if override, set, err := parsePrice(in.UnitPrice); err != nil {
		return nil, apperr.InvalidInput("Item %d: unit_price must be a non-negative number", i+1)
	} else if set {
		price = override
	}

	return &Item{
		ProductID: productID,
		Quantity:  parseQuantity(in.Quantity),
		UnitPrice: price.Round(2),
	}, nil
}

func (s *service) ListOrders(ctx context.Context, status string, salesUserID int64) ([]*Order, error) {
	st, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filter{Status: st, SalesUserID: salesUserID})
}

func (s *service) ListMyOrders(ctx context.Context, caller auth.Identity, status string) ([]*Order, error) {
	st, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filter{Status: st, SalesUserID: caller.ID})
}

func (s *service) GetOrder(ctx context.Context, caller auth.Identity, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.OwnerOrRole(caller, o.SalesUserID, user.RoleAdmin) {
		return nil, apperr.Forbidden("Access denied")
	}
	return o, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id int64, status string) (*Order, error) {
	st := Status(status)
	if !st.Valid() {
		return nil, apperr.InvalidInput("Valid status is required")
	}
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"order_id": id, "status": st}).Info("Order status updated")
	return s.repo.GetByID(ctx, id)
}

func (s *service) CountUnnotified(ctx context.Context) (int, error) {
	return s.repo.CountUnnotified(ctx)
}

func (s *service) ListUnnotified(ctx context.Context) ([]*Order, error) {
	return s.repo.ListUnnotified(ctx)
}

func (s *service) MarkNotified(ctx context.Context, id int64) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	return s.repo.MarkNotified(ctx, id)
}

func (s *service) MarkAllNotified(ctx context.Context) error {
	n, err := s.repo.MarkAllNotified(ctx)
	if err != nil {
		return err
	}
	log.WithField("orders", n).Debug("Marked orders as notified")
	return nil
}

func (s *service) DeleteOrder(ctx context.Context, caller auth.Identity, id int64) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.OwnerOrRole(caller, o.SalesUserID, user.RoleAdmin) {
		return apperr.Forbidden("Access denied")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.WithFields(log.Fields{"order_id": id, "deleted_by": caller.ID}).Info("Order deleted")
	return nil
}

func (s *service) SalesUsers(ctx context.Context) ([]*user.User, error) {
	return s.sales.FindApprovedSalesUsers(ctx)
}

func (s *service) mustExist(ctx context.Context, id int64) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Order not found")
	}
	return nil
}

func statusFilter(status string) (Status, error) {
	if status == "" {
		return "", nil
	}
	st := Status(status)
	if !st.Valid() {
		return "", apperr.InvalidInput("Unknown status %q", status)
	}
	return st, nil
}

// scalar returns the JSON number or string in raw as text, and false for anything else.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	return string(raw), true
}

func parseID(raw json.RawMessage) (int64, bool) {
	s, ok := scalar(raw)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

// parseQuantity coerces the requested quantity to a positive integer, defaulting to 1.
func parseQuantity(raw json.RawMessage) int {
	s, ok := scalar(raw)
	if !ok {
		return 1
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 1
	}
	q := d.IntPart()
	if q < 1 || q > int64(^uint32(0)>>1) {
		return 1
	}
	return int(q)
}

// parsePrice returns the unit price override, if one was sent, rounded to cents.
func parsePrice(raw json.RawMessage) (decimal.Decimal, bool, error) {
	s, ok := scalar(raw)
	if !ok {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false, apperr.InvalidInput("invalid unit price %q", s)
	}
	return d.Round(2), true, nil
}
