package product

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	"pos-admin/internal/store"
)

type gatewayRepo struct {
	gw     store.Gateway
	logger *zerolog.Logger
}

func New(gw store.Gateway, log *zerolog.Logger) Repository {
	return &gatewayRepo{gw: gw, logger: logger.OrNop(log)}
}

func (r *gatewayRepo) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.gw.Select(ctx, store.TableProducts, nil, store.Asc("name"))
	if err != nil {
		r.logger.Error().Err(err).Msg("product repo: list")
		return nil, err
	}
	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromRow(row))
	}
	r.logger.Debug().Int("count", len(items)).Msg("product repo: list")
	return items, nil
}

func (r *gatewayRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return r.getOne(ctx, store.Filter{store.Eq("id", id)})
}

// GetBySKU matches case-insensitively on the trimmed SKU.
func (r *gatewayRepo) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	want := strings.ToLower(strings.TrimSpace(sku))
	if want == "" {
		return nil, domain.ErrNotFound
	}
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if strings.ToLower(strings.TrimSpace(items[i].SKU)) == want {
			return &items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *gatewayRepo) Create(ctx context.Context, item domain.Item) (*domain.Item, error) {
	rows, err := r.gw.Insert(ctx, store.TableProducts, toRow(item))
	if err != nil {
		r.logger.Error().Err(err).Str("name", item.Name).Msg("product repo: create")
		return nil, err
	}
	created := fromRow(rows[0])
	r.logger.Info().Str("id", created.ID).Str("name", created.Name).Msg("product repo: created")
	return &created, nil
}

func (r *gatewayRepo) Update(ctx context.Context, item domain.Item) (*domain.Item, error) {
	rows, err := r.gw.Update(ctx, store.TableProducts, toRow(item), store.Filter{store.Eq("id", item.ID)})
	if err != nil {
		r.logger.Error().Err(err).Str("id", item.ID).Msg("product repo: update")
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	updated := fromRow(rows[0])
	return &updated, nil
}

func (r *gatewayRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.gw.Delete(ctx, store.TableProducts, store.Filter{store.Eq("id", id)}); err != nil {
		r.logger.Error().Err(err).Str("id", id).Msg("product repo: delete")
		return err
	}
	r.logger.Info().Str("id", id).Msg("product repo: deleted")
	return nil
}

// Upsert updates the item sharing the SKU, or creates a new one.
func (r *gatewayRepo) Upsert(ctx context.Context, item domain.Item) (*domain.Item, error) {
	existing, err := r.GetBySKU(ctx, item.SKU)
	switch {
	case err == nil:
		item.ID = existing.ID
		return r.Update(ctx, item)
	case errors.Is(err, domain.ErrNotFound):
		item.ID = ""
		return r.Create(ctx, item)
	default:
		return nil, err
	}
}

func (r *gatewayRepo) getOne(ctx context.Context, filter store.Filter) (*domain.Item, error) {
	rows, err := r.gw.Select(ctx, store.TableProducts, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	item := fromRow(rows[0])
	return &item, nil
}

func toRow(item domain.Item) store.Row {
	return store.Row{
		"name":     item.Name,
		"category": item.Category,
		"price":    item.Price,
		"barcode":  item.Barcode,
		"sku":      item.SKU,
	}
}

func fromRow(row store.Row) domain.Item {
	return domain.Item{
		ID:        row.String("id"),
		Name:      row.String("name"),
		Category:  row.String("category"),
		Price:     row.Decimal("price"),
		Barcode:   row.String("barcode"),
		SKU:       row.String("sku"),
		CreatedAt: row.Time("created_at"),
	}
}
