package customer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	custrepo "pos-admin/internal/repository/customer"
)

// Input mirrors incoming customer payloads.
type Input struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Service manages the customer directory used by billing.
type Service struct {
	repo   custrepo.Repository
	logger *zerolog.Logger
}

func New(repo custrepo.Repository, log *zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.OrNop(log)}
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

// Search filters the directory by q: name and email match case-insensitively,
// phone matches as a plain substring. A blank q returns everyone.
func (s *Service) Search(ctx context.Context, q string) ([]domain.Customer, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return all, nil
	}
	needle := strings.ToLower(q)
	out := make([]domain.Customer, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) ||
			strings.Contains(c.Phone, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	c, err := in.customer()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("customer_id", created.ID).Msg("customer: created")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Customer, error) {
	c, err := in.customer()
	if err != nil {
		return nil, err
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (in Input) customer() (domain.Customer, error) {
	c := domain.Customer{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
	}
	if c.Name == "" {
		return domain.Customer{}, &domain.ValidationError{Fields: []string{"name"}}
	}
	return c, nil
}
