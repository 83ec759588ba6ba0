package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mizuleaf/callscope/internal/domain"
	"github.com/mizuleaf/callscope/internal/infrastructure/database/models"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func accountToDomain(m models.Account) domain.Account {
	return domain.Account{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		DisplayName:  m.DisplayName,
		ExternalID:   m.ExternalID,
		ClientID:     m.ClientID,
		ClientSecret: m.ClientSecret,
		IsActive:     m.IsActive,
		LastSyncedAt: m.LastSyncedAt,
		CDate:        m.CDate,
	}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	m := models.Account{
		ID:           uuid.NewString(),
		OwnerID:      account.OwnerID,
		DisplayName:  account.DisplayName,
		ExternalID:   account.ExternalID,
		ClientID:     account.ClientID,
		ClientSecret: account.ClientSecret,
		IsActive:     true,
	}
	err := r.db.WithContext(ctx).Create(&m).Error
	if err != nil {
		return domain.Account{}, err
	}
	return accountToDomain(m), nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (domain.Account, error) {
	var m models.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.NotFoundError{Resource: "account"}
		}
		return domain.Account{}, err
	}
	return accountToDomain(m), nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Order("cdate DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, accountToDomain(a))
	}
	return result, nil
}

func (r *AccountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("cdate ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, accountToDomain(a))
	}
	return result, nil
}

func (r *AccountRepository) UpdateLastSynced(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_synced_at", at).Error
}
