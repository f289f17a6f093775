package user

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/orderdesk/internal/apperr"
)

const minPasswordLength = 6

type service struct {
	repo     Repository
	hashCost int
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo, hashCost: bcrypt.DefaultCost}
}

func (s *service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" || req.Role == "" {
		return nil, apperr.InvalidInput("All fields are required")
	}
	if Role(req.Role) != RoleSales {
		return nil, apperr.Forbidden("Admin accounts cannot be created through registration")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.InvalidInput("A valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.InvalidInput("Password must be at least %d characters", minPasswordLength)
	}

	if err := s.ensureFree(ctx, s.repo.GetByEmail, email, "Email already registered"); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.repo.GetByUsername, username, "Username already taken"); err != nil {
		return nil, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleSales,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": id, "username": username}).Info("Sales account registered, awaiting approval")
	return s.repo.GetByID(ctx, id)
}

func (s *service) ensureFree(ctx context.Context, find func(context.Context, string) (*User, error), key, msg string) error {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return apperr.Conflict("%s", msg)
	case apperr.Is(err, apperr.KindNotFound):
		return nil
	default:
		return err
	}
}

func (s *service) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *service) FindByLogin(ctx context.Context, login string) (*User, error) {
	u, err := s.FindByEmail(ctx, login)
	if apperr.Is(err, apperr.KindNotFound) {
		return s.FindByUsername(ctx, login)
	}
	return u, err
}

func (s *service) ValidatePassword(u *User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

func (s *service) FindApprovedSalesUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListApprovedSales(ctx)
}

func (s *service) ListPending(ctx context.Context) ([]*User, error) {
	return s.repo.ListPending(ctx)
}

func (s *service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *service) Approve(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Approved {
		return nil, apperr.InvalidInput("User is already approved")
	}
	if err := s.repo.SetApproved(ctx, id, true); err != nil {
		return nil, err
	}
	u.Approved = true
	log.WithFields(log.Fields{"user_id": id, "username": u.Username}).Info("Sales account approved")
	return u, nil
}

func (s *service) Reject(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Approved {
		return apperr.InvalidInput("Cannot reject an approved user")
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SetActive(ctx context.Context, id int64, active bool) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		return nil, apperr.Forbidden("Admin accounts cannot be deactivated")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	u.IsActive = active
	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return apperr.Forbidden("Admin accounts cannot be deleted")
	}
	n, err := s.repo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("User has %d order(s); deactivate the account instead", n)
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	n, err := s.repo.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		log.Debug("Admin account already exists")
		return false, nil
	}

	hash, err := s.hash(seed.Password)
	if err != nil {
		return false, err
	}
	id, err := s.repo.Create(ctx, &User{
		Username:     seed.Username,
		Email:        strings.ToLower(seed.Email),
		PasswordHash: hash,
		Role:         RoleAdmin,
		Approved:     true,
		IsActive:     true,
	})
	if err != nil {
		return false, errors.Wrap(err, "create admin account")
	}
	log.WithFields(log.Fields{"user_id": id, "username": seed.Username}).Info("Admin account created")
	return true, nil
}
