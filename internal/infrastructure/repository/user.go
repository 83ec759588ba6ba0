package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userToDomain(m models.User) domain.User {
	return domain.User{
		ID:       m.ID,
		Email:    m.Email,
		FullName: m.FullName,
		Role:     m.Role,
		CDate:    m.CDate,
	}
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(user), nil
}

func (r *UserRepository) GetByTokenHash(ctx context.Context, tokenHash string) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userToDomain(user), nil
}

func (r *UserRepository) ListAdmins(ctx context.Context) ([]domain.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RoleAdmin).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.User, 0, len(users))
	for _, u := range users {
		result = append(result, userToDomain(u))
	}
	return result, nil
}
