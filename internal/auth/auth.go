package auth

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"legal-roundtable/internal/config"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/models"
	"strings"
)

var ErrInvalidCredentials = errors.New("email or password false")

type AuthService struct {
	*environment.Env
}

// DoLogin checks the credentials in user and fills in the id of the stored user.
func (s *AuthService) DoLogin(ctx context.Context, user *models.User) error {
	var foundUser models.User

	err := s.FindUserLoginCredentials(ctx, user.Email, &foundUser)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		s.LogError(logging.GetLogType(logging.TypeAuth), err)
		return err
	}

	if err = models.VerifyPassword(foundUser.Password, user.Password); err != nil {
		return ErrInvalidCredentials
	}
	user.ID = foundUser.ID
	return nil
}

// SeedUsers upserts the configured author accounts. Passwords are expected as bcrypt hashes.
func (s *AuthService) SeedUsers(ctx context.Context, seeds []config.SeedUser) error {
	if len(seeds) == 0 {
		return nil
	}

	users := make([]models.User, 0, len(seeds))
	for _, seed := range seeds {
		user := models.User{
			Model:    models.Model{ID: seed.Id},
			Email:    seed.Email,
			Password: seed.Password,
		}
		user.Prepare()
		if err := user.Validate(); err != nil {
			s.LogErrorf(logging.GetLogType(logging.TypeAuth), "skipping configured user %s: %v", seed.Email, err)
			continue
		}
		users = append(users, user)
	}

	if len(users) == 0 {
		return nil
	}
	if err := s.UpsertUsers(ctx, users); err != nil {
		return err
	}

	s.LogInfof(logging.GetLogTypeInitialization(), "%d configured users seeded", len(users))
	return nil
}

// CheckAdmin reports whether email is an administrator and, only in that case, the whole allow-list.
func CheckAdmin(email string, adminEmails []string) (bool, []string) {
	if !middlewares.IsAdminEmail(email, adminEmails) {
		return false, []string{}
	}

	list := make([]string, 0, len(adminEmails))
	for _, e := range adminEmails {
		list = append(list, strings.TrimSpace(e))
	}
	return true, list
}
