package register

import (
	"context"

	"github.com/magabrotheeeer/cookie-auth/internal/models"
)

// Service описывает регистрацию учётной записи.
type Service interface {
	Register(ctx context.Context, email, password, fullName string) (models.Profile, error)
}
