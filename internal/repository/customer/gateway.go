package customer

import (
	"context"
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

// New returns a Repository backed by the persistence gateway.
func New(gw store.Gateway, log *zerolog.Logger) Repository {
	return &gatewayRepo{gw: gw, logger: logger.OrNop(log)}
}

func (r *gatewayRepo) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.gw.Select(ctx, store.TableCustomers, nil, store.Asc("name"))
	if err != nil {
		r.logger.Error().Err(err).Msg("customer repo: list")
		return nil, err
	}
	out := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (r *gatewayRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	rows, err := r.gw.Select(ctx, store.TableCustomers, store.Filter{store.Eq("id", id)})
	if err != nil {
		r.logger.Error().Err(err).Str("id", id).Msg("customer repo: get")
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	c := fromRow(rows[0])
	return &c, nil
}

func (r *gatewayRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	rows, err := r.gw.Insert(ctx, store.TableCustomers, toRow(c))
	if err != nil {
		r.logger.Error().Err(err).Msg("customer repo: create")
		return nil, err
	}
	created := fromRow(rows[0])
	r.logger.Info().Str("id", created.ID).Msg("customer repo: created")
	return &created, nil
}

func (r *gatewayRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	rows, err := r.gw.Update(ctx, store.TableCustomers, toRow(c), store.Filter{store.Eq("id", c.ID)})
	if err != nil {
		r.logger.Error().Err(err).Str("id", c.ID).Msg("customer repo: update")
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
	return r.gw.Delete(ctx, store.TableCustomers, store.Filter{store.Eq("id", id)})
}

func toRow(c domain.Customer) store.Row {
	return store.Row{
		"name":    c.Name,
		"phone":   c.Phone,
		"email":   strings.ToLower(strings.TrimSpace(c.Email)),
		"address": c.Address,
	}
}

func fromRow(row store.Row) domain.Customer {
	return domain.Customer{
		ID:        row.String("id"),
		Name:      row.String("name"),
		Phone:     row.String("phone"),
		Email:     row.String("email"),
		Address:   row.String("address"),
		CreatedAt: row.Time("created_at"),
	}
}
