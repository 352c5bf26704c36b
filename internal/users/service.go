package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/authz"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/identity"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/gokulstevee/appsync-rbac-lambda/internal/password"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/logger"
	"github.com/gokulstevee/appsync-rbac-lambda/pkg/metrics"
)

// Service implements the user administration operations on top of an
// identity provider and a user record store. Calls are issued strictly in
// sequence and never retried.
type Service struct {
	repo        UserRepository
	provider    identity.Provider
	compensate  bool
	newPassword func() (string, error)
}

// Option customises a Service.
type Option func(*Service)

// WithCompensation enables best-effort rollback of earlier steps when a
// later step of RegisterUser or UpdateUserRole fails.
func WithCompensation(on bool) Option {
	return func(s *Service) { s.compensate = on }
}

// WithPasswordGenerator replaces the temporary password generator.
func WithPasswordGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.newPassword = fn }
}

func NewService(r UserRepository, p identity.Provider, opts ...Option) *Service {
	s := &Service{repo: r, provider: p, newPassword: password.Generate}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterInput carries the registerUser arguments.
type RegisterInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateRoleInput carries the updateUserRole arguments.
type UpdateRoleInput struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// RegisterUser creates the pool account, puts it in the role's group and
// stores its metadata record keyed by the provider-assigned identifier.
func (s *Service) RegisterUser(ctx context.Context, caller *models.Identity, in RegisterInput) error {
	if !authz.IsAdmin(caller) {
		return ErrAccessDenied
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if in.Email == "" || in.Role == "" {
		return fmt.Errorf("%w: email and role are required", ErrInvalidArgument)
	}

	temp, err := s.newPassword()
	if err != nil {
		return err
	}

	if err := s.provider.CreateUser(ctx, identity.CreateUserInput{
		Username:          in.Email,
		Email:             in.Email,
		Name:              in.Name,
		TemporaryPassword: temp,
	}); err != nil {
		return &ProviderError{Op: "CreateUser", Err: err}
	}
	logger.Infof("registerUser: account %s created in identity provider", in.Email)

	if err := s.provider.AddUserToGroup(ctx, in.Email, in.Role); err != nil {
		s.undoRegister(ctx, in.Email)
		return &ProviderError{Op: "AddUserToGroup", Err: err}
	}
	logger.Infof("registerUser: account %s added to group %s", in.Email, in.Role)

	acc, err := s.provider.GetUser(ctx, in.Email)
	if err != nil {
		s.undoRegister(ctx, in.Email)
		return &ProviderError{Op: "GetUser", Err: err}
	}

	u := &models.User{ID: acc.ID(), Name: in.Name, Email: in.Email, Role: in.Role}
	if err := s.repo.Put(ctx, u); err != nil {
		s.undoRegister(ctx, in.Email)
		return &StoreError{Op: "Put", Err: err}
	}
	logger.Infof("registerUser: metadata stored for %s (id=%s)", in.Email, u.ID)
	return nil
}

// undoRegister deletes a half-registered account; failures are only logged.
func (s *Service) undoRegister(ctx context.Context, username string) {
	if !s.compensate {
		return
	}
	if err := s.provider.DeleteUser(ctx, username); err != nil {
		metrics.CompensationsTotal.WithLabelValues("register", "failed").Inc()
		logger.Errorf("registerUser: rollback of account %s failed, provider and store now disagree: %v", username, err)
		return
	}
	metrics.CompensationsTotal.WithLabelValues("register", "ok").Inc()
	logger.Warnf("registerUser: rolled back account %s after partial failure", username)
}

// ListUsers returns every stored user record.
func (s *Service) ListUsers(ctx context.Context, caller *models.Identity) ([]*models.User, error) {
	if !authz.IsAdmin(caller) {
		return nil, ErrAccessDenied
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "List", Err: err}
	}
	return list, nil
}

// UpdateUserRole moves the user from its stored role's group to the new
// role's group and records the new role. The add is issued even when the
// role is unchanged.
func (s *Service) UpdateUserRole(ctx context.Context, caller *models.Identity, in UpdateRoleInput) error {
	if !authz.IsAdmin(caller) {
		return ErrAccessDenied
	}
	in.Role = strings.TrimSpace(in.Role)
	if in.UserID == "" || in.Role == "" {
		return fmt.Errorf("%w: userId and role are required", ErrInvalidArgument)
	}

	u, err := s.repo.Get(ctx, in.UserID)
	if err != nil {
		return &StoreError{Op: "Get", Err: err}
	}
	if u == nil {
		return ErrNotFound
	}

	oldRole := u.Role
	removed := false
	if oldRole != "" && oldRole != in.Role {
		if err := s.provider.RemoveUserFromGroup(ctx, u.Email, oldRole); err != nil {
			return &ProviderError{Op: "RemoveUserFromGroup", Err: err}
		}
		removed = true
		logger.Infof("updateUserRole: %s removed from group %s", u.Email, oldRole)
	}

	if err := s.provider.AddUserToGroup(ctx, u.Email, in.Role); err != nil {
		s.undoRoleChange(ctx, u.Email, oldRole, "", removed)
		return &ProviderError{Op: "AddUserToGroup", Err: err}
	}
	logger.Infof("updateUserRole: %s added to group %s", u.Email, in.Role)

	if err := s.repo.UpdateRole(ctx, in.UserID, in.Role); err != nil {
		added := ""
		if in.Role != oldRole {
			added = in.Role
		}
		s.undoRoleChange(ctx, u.Email, oldRole, added, removed)
		return &StoreError{Op: "UpdateRole", Err: err}
	}
	logger.Infof("updateUserRole: stored role for %s is now %s", in.UserID, in.Role)
	return nil
}

// undoRoleChange restores the group membership that existed before a failed
// role update. added is the group joined by this call ("" if none).
func (s *Service) undoRoleChange(ctx context.Context, username, oldRole, added string, removed bool) {
	if !s.compensate || (added == "" && !removed) {
		return
	}
	result := "ok"
	if added != "" {
		if err := s.provider.RemoveUserFromGroup(ctx, username, added); err != nil {
			result = "failed"
			logger.Errorf("updateUserRole: rollback removal of %s from %s failed: %v", username, added, err)
		}
	}
	if removed {
		if err := s.provider.AddUserToGroup(ctx, username, oldRole); err != nil {
			result = "failed"
			logger.Errorf("updateUserRole: rollback re-add of %s to %s failed: %v", username, oldRole, err)
		}
	}
	metrics.CompensationsTotal.WithLabelValues("update_role", result).Inc()
	if result == "ok" {
		logger.Warnf("updateUserRole: restored group membership of %s after partial failure", username)
	}
}

// Me returns the caller's stored record or, when none exists, a profile
// synthesised from the caller's claims. The synthesised profile is not stored.
func (s *Service) Me(ctx context.Context, caller *models.Identity) (*models.User, error) {
	if caller == nil || caller.Sub == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.repo.Get(ctx, caller.Sub)
	if err != nil {
		return nil, &StoreError{Op: "Get", Err: err}
	}
	if u != nil {
		return u, nil
	}
	role := models.DefaultRole
	if groups := caller.Groups(); len(groups) > 0 {
		role = groups[0]
	}
	return &models.User{
		ID:    caller.Sub,
		Name:  caller.Claim("name"),
		Email: caller.Claim("email"),
		Role:  role,
	}, nil
}
