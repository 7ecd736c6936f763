package repository

import (
	"context"
	"errors"
	"fmt"

	"solicitations/internal/models"

	"gorm.io/gorm"
)

func (repo *Repository) GetUsers(ctx context.Context) ([]models.User, error) {
	result := []models.User{}

	err := repo.db.WithContext(ctx).Order("created_at DESC").Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetUsers: %w", err)
	}
	return result, nil
}

func (repo *Repository) AddUser(ctx context.Context, u models.User) (models.User, error) {
	result := u

	err := repo.db.WithContext(ctx).Create(&result).Error
	if err != nil {
		return u, fmt.Errorf("repository.Repository.AddUser: %w", err)
	}
	return result, nil
}

func (repo *Repository) UserByEmail(ctx context.Context, email string) (models.User, bool, error) {
	var user models.User

	err := repo.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, false, nil
	} else if err != nil {
		return user, false, fmt.Errorf("repository.Repository.UserByEmail: %w", err)
	}

	return user, true, nil
}
