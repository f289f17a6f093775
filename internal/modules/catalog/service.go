package catalog

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/orderdesk/internal/apperr"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	// FindByID is the read-only lookup the order side prices items with.
	FindByID(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	ListActiveProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ImportPrices(ctx context.Context, rows []PriceRow) (updated, inserted int, err error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.RetailPrice == nil {
		return nil, apperr.InvalidInput("Name and price are required")
	}
	p := &Product{Active: true}
	apply(p, in)
	if err := validate(p); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"product_id": id, "name": p.Name}).Info("Product created")
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListActiveProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(p, in)
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.WithField("product_id", id).Info("Product deleted")
	return nil
}

func (s *service) ImportPrices(ctx context.Context, rows []PriceRow) (int, int, error) {
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		rows[i].Category = strings.TrimSpace(rows[i].Category)
		if rows[i].Name == "" {
			return 0, 0, apperr.InvalidInput("row %d: name is required", i+1)
		}
		if !rows[i].RetailPrice.IsPositive() {
			return 0, 0, apperr.InvalidInput("row %d (%s): price must be greater than 0", i+1, rows[i].Name)
		}
		if rows[i].WholesalePrice.Valid && !rows[i].WholesalePrice.Decimal.IsPositive() {
			rows[i].WholesalePrice.Valid = false
		}
	}
	return s.repo.ApplyPrices(ctx, rows)
}

func apply(p *Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.RetailPrice != nil {
		p.RetailPrice = *in.RetailPrice
	}
	if in.WholesalePrice.Set {
		p.WholesalePrice = in.WholesalePrice.Value
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}

func validate(p *Product) error {
	switch {
	case p.Name == "":
		return apperr.InvalidInput("Name is required")
	case !p.RetailPrice.IsPositive():
		return apperr.InvalidInput("Price must be greater than 0")
	case p.WholesalePrice.Valid && !p.WholesalePrice.Decimal.IsPositive():
		return apperr.InvalidInput("Wholesale price must be greater than 0")
	case p.StockQuantity < 0:
		return apperr.InvalidInput("Stock quantity cannot be negative")
	}
	return nil
}
