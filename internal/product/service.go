package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Service interface {
	GetProducts(ctx context.Context, category string) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	AddProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProducts(ctx context.Context, category string) ([]Product, error) {
	products, err := s.repo.GetAll(ctx, category)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("service: failed to fetch products")
		return nil, fmt.Errorf("service: failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *service) AddProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" {
		return nil, errors.New("service: product name is required")
	}
	if p.Price.LessThan(decimal.Zero) {
		return nil, errors.New("service: product price cannot be negative")
	}
	if p.Stock < 0 {
		return nil, errors.New("service: product stock cannot be negative")
	}

	if _, err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	if stock < 0 {
		return errors.New("service: product stock cannot be negative")
	}

	if err := s.repo.UpdateStock(ctx, id, stock); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product stock")
		return fmt.Errorf("service: failed to update product stock: %w", err)
	}

	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	return nil
}
