package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/mizuleaf/callscope/internal/domain"
)

var tracer = otel.Tracer("auth")

// UserLookup is the slice of user storage the auth service needs.
type UserLookup interface {
	Get(ctx context.Context, id string) (domain.User, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (domain.User, error)
}

type AuthService struct {
	users UserLookup
}

func NewAuthService(users UserLookup) *AuthService {
	return &AuthService{users: users}
}

// AuthToken resolves a bearer API token to a user. Tokens are stored hashed;
// the raw token never touches the database.
func (s *AuthService) AuthToken(ctx context.Context, token string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	if token == "" {
		err := fmt.Errorf("empty token")
		span.RecordError(err)
		return domain.User{}, err
	}

	hash := sha256.Sum256([]byte(token))
	user, err := s.users.GetByTokenHash(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		span.RecordError(errors.Wrap(err, "AuthService.AuthToken: token lookup failed"))
		return domain.User{}, err
	}

	return user, nil
}

// RequireAdmin re-reads the requester's role from storage. Role claims held
// in the request context are an optimization for reads only; anything gated
// on admin goes through here.
func (s *AuthService) RequireAdmin(ctx context.Context, userID string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.RequireAdmin")
	defer span.End()

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "AuthService.RequireAdmin: user lookup failed"))
		return domain.User{}, err
	}

	if !user.IsAdmin() {
		err := fmt.Errorf("admin role required")
		span.RecordError(err)
		return domain.User{}, err
	}

	return user, nil
}
