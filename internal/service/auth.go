package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/hash"
	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/tokens"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/validation"

	"github.com/fatmac/marketplace/internal/events"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Mailer   mailer.Mailer
	Events   events.Publisher
	Secret   []byte
	TokenTTL time.Duration
}

func NewAuthService(r *repo.GormRepo, m mailer.Mailer, ev events.Publisher, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{Repo: r, Mailer: m, Events: ev, Secret: secret, TokenTTL: ttl}
}

func (s *AuthService) issueToken(u *models.User) (string, error) {
	subject := strconv.FormatUint(uint64(u.ID), 10)
	return tokens.NewAccessToken(subject, u.Role, u.Status, time.Now().UTC().Add(s.TokenTTL), s.Secret)
}

// Register creates an account. The default is an approved customer with a
// session token; role=vendor turns the request into a vendor application,
// which gets no token until an admin approves it.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, string, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, "", newValidationError(fields)
	}

	if req.Role == models.RoleVendor {
		user, err := s.RegisterVendor(ctx, transport.RegisterVendorRequest{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		return user, "", err
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
		Status:       models.StatusApproved,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, "", fieldError("email", "email is already registered")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.publishUserEvent(ctx, "user_registered", user)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// RegisterVendor creates a pending vendor account. No token is issued: a
// vendor cannot log in until an admin approves the application.
func (s *AuthService) RegisterVendor(ctx context.Context, req transport.RegisterVendorRequest) (*models.User, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:                req.Name,
		Email:               req.Email,
		PasswordHash:        pwHash,
		Role:                models.RoleVendor,
		Status:              models.StatusPending,
		PhoneNumber:         req.PhoneNumber,
		WhatsappNumber:      req.WhatsappNumber,
		BusinessDescription: req.BusinessDescription,
		BusinessAddress:     req.BusinessAddress,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fieldError("email", "email is already registered")
		}
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	s.publishUserEvent(ctx, "vendor_registered", user)

	s.sendMail(ctx, mailer.Message{
		Kind: mailer.KindVendorRegistrationConfirmation,
		To:   user.Email,
		Data: map[string]any{"name": user.Name},
	})
	if admins, err := s.Repo.ListAdmins(ctx); err == nil {
		for _, admin := range admins {
			s.sendMail(ctx, mailer.Message{
				Kind: mailer.KindVendorRegistrationNotification,
				To:   admin.Email,
				Data: map[string]any{"vendor_name": user.Name, "vendor_email": user.Email},
			})
		}
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*models.User, string, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, "", newValidationError(fields)
	}

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fieldError("email", "invalid credentials")
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", fieldError("email", "invalid credentials")
	}
	if user.Role == models.RoleVendor && user.Status != models.StatusApproved {
		return nil, "", fmt.Errorf("%w: vendor account is %s", ErrForbidden, user.Status)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, req transport.UpdateProfileRequest) (*models.User, error) {
	if fields := validation.Struct(req); fields != nil {
		return nil, newValidationError(fields)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.WhatsappNumber != nil {
		user.WhatsappNumber = *req.WhatsappNumber
	}
	if req.BusinessDescription != nil {
		user.BusinessDescription = *req.BusinessDescription
	}
	if req.BusinessAddress != nil {
		user.BusinessAddress = *req.BusinessAddress
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before replacing it and clears
// the forced-change flag set by checkout provisioning.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, req transport.ChangePasswordRequest) error {
	if fields := validation.Struct(req); fields != nil {
		return newValidationError(fields)
	}

	if !hash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return fieldError("current_password", "current password is incorrect")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = pwHash
	user.MustChangePassword = false

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	return nil
}

func (s *AuthService) sendMail(ctx context.Context, msg mailer.Message) {
	if err := s.Mailer.Send(ctx, msg); err != nil {
		logging.FromContext(ctx).Warn("mail_enqueue_failed", "kind", string(msg.Kind), "error", err)
	}
}

func (s *AuthService) publishUserEvent(ctx context.Context, eventType string, u *models.User) {
	event := map[string]any{"type": eventType, "user_id": u.ID, "role": u.Role}
	if err := s.Events.PublishEvent(ctx, events.TopicUserEvents, strconv.FormatUint(uint64(u.ID), 10), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", events.TopicUserEvents, "error", err)
	}
}
