package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/domain"
)

func (s *Service) toolGetAllUsers(ctx context.Context) domain.ToolResult {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to list users: %v", err)
	}

	active := 0
	list := make([]map[string]any, 0, len(users))
	summaries := make([]string, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active++
		}
		list = append(list, map[string]any{
			"username":  u.Username,
			"full_name": u.FullName,
			"role":      string(u.Role),
			"is_active": u.IsActive,
		})
		summaries = append(summaries, fmt.Sprintf("%s (%s)", u.Username, u.Role))
	}
	return domain.OK(
		fmt.Sprintf("%d users (%d active): %s", len(users), active, strings.Join(summaries, ", ")),
		map[string]any{
			"users":        list,
			"total_count":  len(users),
			"active_count": active,
		},
	)
}

func (s *Service) toolCreateUser(ctx context.Context, args map[string]any) domain.ToolResult {
	in := UserInput{
		Username: stringArg(args, "username"),
		Password: stringArg(args, "password"),
		FullName: stringArg(args, "full_name"),
		Email:    stringArg(args, "email"),
		Role:     domain.Role(stringArg(args, "role")),
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}

	user, err := s.CreateUser(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return domain.Fail(domain.ErrKindDuplicate, "%s", err.Error())
		default:
			return domain.Fail(domain.ErrKindValidation, "%s", err.Error())
		}
	}

	return domain.OK(
		fmt.Sprintf("User '%s' created successfully as %s", user.Username, user.Role),
		map[string]any{"user_id": user.ID, "username": user.Username, "role": string(user.Role)},
	)
}

func (s *Service) toolDeleteUser(ctx context.Context, args map[string]any, actor *domain.User) domain.ToolResult {
	username := stringArg(args, "username")

	target, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to look up user: %v", err)
	}
	if target == nil {
		return domain.Fail(domain.ErrKindNotFound, "User '%s' not found", username)
	}
	if target.ID == actor.ID {
		return domain.Fail(domain.ErrKindValidation, "You cannot delete your own account")
	}

	if err := s.store.DeleteUser(ctx, target.ID); err != nil {
		return domain.Fail(domain.ErrKindInternal, "failed to delete user: %v", err)
	}
	s.tokens.RevokeUser(target.ID)

	return domain.OK(
		fmt.Sprintf("User '%s' deleted successfully", username),
		map[string]any{"username": username},
	)
}

// --- Authentication ---

// Login checks credentials and issues a bearer token. The error message
// is identical for a missing user and a wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, fmt.Errorf("invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// --- REST-facing user operations ---

// UserInput carries the fields of a user create request.
type UserInput struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !in.Role.Valid() {
		return fmt.Errorf("invalid role '%s'. Must be user, admin or super_admin", in.Role)
	}
	return nil
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser returns one account by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// CreateUser creates an account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if existing, err := s.store.GetUserByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("username '%s' already taken: %w", in.Username, domain.ErrDuplicate)
	}
	if existing, err := s.store.GetUserByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", in.Email, domain.ErrDuplicate)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and revokes its tokens. Self-deletion is
// rejected.
func (s *Service) DeleteUser(ctx context.Context, id int64, actor *domain.User) error {
	if id == actor.ID {
		return fmt.Errorf("you cannot delete your own account")
	}
	target, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.tokens.RevokeUser(id)
	return nil
}
