package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// Statuses lists every valid status. Transitions between them are unrestricted.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Order is a sales representative's order for a client.
type Order struct {
	ID             int64           `db:"id" json:"id"`
	SalesUserID    int64           `db:"sales_user_id" json:"sales_user_id"`
	SalesUsername  string          `db:"sales_username" json:"sales_username"`
	ClientName     string          `db:"client_name" json:"client_name"`
	ClientEmail    string          `db:"client_email" json:"client_email"`
	ClientPhone    string          `db:"client_phone" json:"client_phone"`
	ClientLocation string          `db:"client_location" json:"client_location"`
	Status         Status          `db:"status" json:"status"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Notes          string          `db:"notes" json:"notes"`
	AdminNotified  bool            `db:"admin_notified" json:"admin_notified"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	// Items is only loaded for single-order reads.
	Items []*Item `db:"-" json:"items,omitempty"`
}

// Item is one line of an order. UnitPrice is captured when the order is placed.
type Item struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// CreateRequest is the payload for placing a new order.
type CreateRequest struct {
	ClientName     string        `json:"client_name"`
	ClientEmail    string        `json:"client_email"`
	ClientPhone    string        `json:"client_phone"`
	ClientLocation string        `json:"client_location"`
	Notes          string        `json:"notes"`
	Items          []ItemRequest `json:"items"`
}

// ItemRequest is one requested line. Clients send numbers or numeric strings,
// so the fields are decoded lazily.
type ItemRequest struct {
	ProductID json.RawMessage `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
	UnitPrice json.RawMessage `json:"unit_price"`
}

// Filter narrows order listings. Zero values mean no filter.
type Filter struct {
	Status      Status
	SalesUserID int64
}

// UpdateStatusRequest is the payload for changing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
