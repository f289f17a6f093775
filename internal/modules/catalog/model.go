package catalog

import (
	"bytes"
	"time"

	"github.com/shopspring/decimal"
)

// Product is an orderable item with a retail and an optional wholesale price.
type Product struct {
	ID             int64               `db:"id" json:"id"`
	Name           string              `db:"name" json:"name"`
	Description    string              `db:"description" json:"description"`
	Category       string              `db:"category" json:"category"`
	RetailPrice    decimal.Decimal     `db:"price" json:"price"`
	WholesalePrice decimal.NullDecimal `db:"wholesale_price" json:"wholesale_price"`
	StockQuantity  int                 `db:"stock_quantity" json:"stock_quantity"`
	ImageURL       string              `db:"image_url" json:"image_url"`
	Active         bool                `db:"active" json:"active"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}

// ProductInput is the payload for creating or updating a product.
// Nil fields keep their current value on update.
type ProductInput struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Category       *string          `json:"category"`
	RetailPrice    *decimal.Decimal `json:"price"`
	WholesalePrice OptionalPrice    `json:"wholesale_price"`
	StockQuantity  *int             `json:"stock_quantity"`
	ImageURL       *string          `json:"image_url"`
	Active         *bool            `json:"active"`
}

// OptionalPrice distinguishes an absent JSON field from an explicit null.
// null, "" and 0 all clear the price.
type OptionalPrice struct {
	Set   bool
	Value decimal.NullDecimal
}

func (o *OptionalPrice) UnmarshalJSON(b []byte) error {
	o.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		o.Value = decimal.NullDecimal{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	o.Value = decimal.NullDecimal{Decimal: d, Valid: !d.IsZero()}
	return nil
}

// PriceRow is one line of a price list import.
type PriceRow struct {
	Name           string
	Category       string
	WholesalePrice decimal.NullDecimal
	RetailPrice    decimal.Decimal
}
