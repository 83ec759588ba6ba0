package usecase

import (
	"context"

	"github.com/mizuleaf/callscope/internal/domain"
)

// AccountUsecase manages the platform accounts that sync pulls from.
// Credentials go in on create and never come back out.
type AccountUsecase struct {
	accounts AccountRepository
}

func NewAccountUsecase(accounts AccountRepository) *AccountUsecase {
	return &AccountUsecase{accounts: accounts}
}

func (uc *AccountUsecase) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.DisplayName == "" {
		return domain.Account{}, domain.ValidationError{Reason: "display name is required"}
	}
	if !account.HasCredentials() {
		return domain.Account{}, domain.ValidationError{Reason: "account id, client id and client secret are required"}
	}
	account.IsActive = true
	return uc.accounts.Create(ctx, account)
}

func (uc *AccountUsecase) List(ctx context.Context) ([]domain.Account, error) {
	return uc.accounts.List(ctx)
}
