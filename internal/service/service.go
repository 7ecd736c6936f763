package service

import (
	"context"
	"fmt"
	"strings"

	"solicitations/internal/metrics"
	"solicitations/internal/models"
	"solicitations/internal/repository"
)

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

//// Solicitations

func (s *Service) GetSolicitations(ctx context.Context) ([]models.Solicitation, error) {
	solicitations, err := s.repo.GetSolicitations(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetSolicitations: %w", err)
	}
	if solicitations == nil {
		solicitations = []models.Solicitation{}
	}
	return solicitations, nil
}

func (s *Service) AddSolicitation(ctx context.Context, solicitation models.Solicitation) (models.Solicitation, error) {
	solicitation.Id = ""
	for i := range solicitation.Clins {
		solicitation.Clins[i].Id = ""
	}

	solicitation, err := s.repo.AddSolicitation(ctx, solicitation)
	if err != nil {
		return solicitation, fmt.Errorf("service.Service.AddSolicitation: %w", err)
	}

	metrics.SolicitationsCreated.Inc()
	return solicitation, nil
}

// EditSolicitation changes only what the update carries, see
// models.SolicitationUpdate.
func (s *Service) EditSolicitation(ctx context.Context, id string, update models.SolicitationUpdate) (models.Solicitation, error) {
	if len(strings.TrimSpace(id)) == 0 {
		return models.Solicitation{}, fmt.Errorf("service.Service.EditSolicitation: %w", models.ErrMissingId)
	}

	solicitation, err := s.repo.UpdateSolicitation(ctx, id, update)
	if err != nil {
		return models.Solicitation{}, fmt.Errorf("service.Service.EditSolicitation: %w", err)
	}

	if update.ReplaceClins {
		metrics.ClinsReplaced.Add(float64(len(update.Clins)))
	}
	return solicitation, nil
}

//// Users

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetUsers: %w", err)
	}
	return users, nil
}

func (s *Service) AddUser(ctx context.Context, user models.User) (models.User, error) {
	user.Id = ""
	if user.SocioEconomicStatus == nil {
		user.SocioEconomicStatus = []string{}
	}

	user, err := s.repo.AddUser(ctx, user)
	if err != nil {
		return user, fmt.Errorf("service.Service.AddUser: %w", err)
	}
	return user, nil
}

func (s *Service) UserByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("service.Service.UserByEmail: %w", err)
	}
	if !ok {
		return models.User{}, fmt.Errorf("service.Service.UserByEmail: %w: %s", models.ErrNoUser, email)
	}
	return user, nil
}
