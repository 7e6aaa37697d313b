package product

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	"pos-admin/internal/pricing"
	productrepo "pos-admin/internal/repository/product"
)

// Input is the editable part of a catalog item.
type Input struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Barcode  string           `json:"barcode"`
	SKU      string           `json:"sku"`
}

type Service struct {
	repo   productrepo.Repository
	logger *zerolog.Logger
}

func New(repo productrepo.Repository, log *zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.OrNop(log)}
}

func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Item, error) {
	item, err := in.item()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product: created")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Item, error) {
	item, err := in.item()
	if err != nil {
		return nil, err
	}
	item.ID = id
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("product_id", id).Msg("product: updated")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("product_id", id).Msg("product: deleted")
	return nil
}

// Upsert creates or replaces the item with the same SKU.
func (s *Service) Upsert(ctx context.Context, in Input) (*domain.Item, error) {
	item, err := in.item()
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, item)
}

func (in Input) item() (domain.Item, error) {
	item := domain.Item{
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Barcode:  strings.TrimSpace(in.Barcode),
		SKU:      strings.TrimSpace(in.SKU),
	}
	var bad []string
	if item.Name == "" {
		bad = append(bad, "name")
	}
	if item.Category == "" {
		bad = append(bad, "category")
	}
	if in.Price == nil || in.Price.IsNegative() {
		bad = append(bad, "price")
	} else {
		item.Price = pricing.Money(*in.Price)
	}
	if len(bad) > 0 {
		return domain.Item{}, &domain.ValidationError{Fields: bad}
	}
	return item, nil
}
