package accounts

import (
	"context"
	"errors"

	"medconnect-server/internal/models"
)

// Authenticate checks login credentials. An unknown email or a wrong
// password yields models.ErrInvalidCredentials. The role is compared only
// once the password matches, and a mismatch yields models.ErrRoleMismatch.
func (r *Resolver) Authenticate(ctx context.Context, email, password string, role models.Role) (models.Account, error) {
	role, err := models.ParseRole(string(role))
	if err != nil {
		return nil, err
	}

	account, err := r.FindByEmail(ctx, email, "")
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := r.store.VerifySecret(account, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrInvalidCredentials
	}

	base := account.Base()
	if role != "" && base.Role != role {
		return nil, models.ErrRoleMismatch
	}
	if !base.IsActive {
		return nil, models.ErrAccountInactive
	}
	return account, nil
}
