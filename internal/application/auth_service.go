package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/kv"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

const ResetTokenTTL = 30 * time.Minute

type AuthEventKind string

const (
	AuthSignedIn        AuthEventKind = "signed_in"
	AuthSignedOut       AuthEventKind = "signed_out"
	AuthRegistered      AuthEventKind = "registered"
	AuthPasswordChanged AuthEventKind = "password_changed"
)

// AuthEvent is delivered to auth state listeners after the change is stored.
type AuthEvent struct {
	Kind   AuthEventKind
	UserID string
	Email  string
	At     time.Time
}

type AuthListener func(ctx context.Context, ev AuthEvent)

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthResult is returned by every flow that signs a user in.
type AuthResult struct {
	Session *Session
	Tokens  TokenPair
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,pwd"`
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName" validate:"max=60"`
	Username  string `json:"username" validate:"required,username"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address" validate:"max=300"`
}

type AuthService struct {
	Users       repo.UserRepository
	Credentials repo.CredentialRepository
	Sessions    *SessionService
	JWT         *helpers.JWTManager
	KV          kv.Store
	Mailer      Mailer
	Index       UserIndex
	Validate    *validator.Validate
	Logger      *logrus.Logger
	ResetURL    string
	Now         func() time.Time

	mu        sync.RWMutex
	listeners []AuthListener
}

func NewAuthService(users repo.UserRepository, creds repo.CredentialRepository, sessions *SessionService, jwt *helpers.JWTManager, store kv.Store, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:       users,
		Credentials: creds,
		Sessions:    sessions,
		JWT:         jwt,
		KV:          store,
		Logger:      logger,
		Validate:    defaultValidator,
		Now:         time.Now,
	}
}

// OnAuthStateChanged registers fn to run after every sign-in, sign-out,
// registration and password change.
func (s *AuthService) OnAuthStateChanged(fn AuthListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *AuthService) notify(ctx context.Context, kind AuthEventKind, u *entity.User) {
	s.mu.RLock()
	ls := append([]AuthListener(nil), s.listeners...)
	s.mu.RUnlock()
	ev := AuthEvent{Kind: kind, UserID: u.ID, Email: u.Email, At: s.now()}
	for _, fn := range ls {
		fn(ctx, ev)
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates credentials and a profile, then signs the user in.
// The username check is a read before the write and can race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	if err := ensureUsernameFree(ctx, s.Users, in.Username, ""); err != nil {
		return nil, err
	}
	if _, err := s.Credentials.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &entity.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Username:  in.Username,
		Phone:     in.Phone,
		Address:   in.Address,
		Role:      entity.RoleUser,
		Status:    entity.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Credentials.Put(ctx, &entity.Credential{ID: u.ID, Email: u.Email, PasswordHash: hash}); err != nil {
		return nil, err
	}
	if err := s.Users.Put(ctx, u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	s.notify(ctx, AuthRegistered, u)

	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, AuthSignedIn, u)
	return res, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	cred, err := s.Credentials.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(cred.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Users.Get(ctx, cred.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.IsBanned() {
		return nil, ErrUserBanned
	}
	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, AuthSignedIn, u)
	return res, nil
}

// SignOut drops the stored session. Signing out a guest is a no-op.
func (s *AuthService) SignOut(ctx context.Context, sess *Session) error {
	if sess.RequireMember() != nil {
		return nil
	}
	if err := s.Sessions.Clear(ctx, sess.UserID); err != nil {
		return err
	}
	u := sess.Profile
	if u == nil {
		u = &entity.User{ID: sess.UserID, Email: sess.Email}
	}
	s.notify(ctx, AuthSignedOut, u)
	return nil
}

// Refresh rotates the token pair while the stored session still carries the
// token's sid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.Sessions.Restore(ctx, claims.UserID)
	if err != nil || sess.SID != claims.SessionID {
		return nil, ErrInvalidCredentials
	}
	u, err := s.Users.Get(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		_ = s.Sessions.Clear(ctx, claims.UserID)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.IsBanned() {
		_ = s.Sessions.Clear(ctx, u.ID)
		return nil, ErrUserBanned
	}
	return s.issue(ctx, u)
}

// SendPasswordReset stores a reset token and enqueues the email. Unknown
// addresses succeed silently.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string, client ClientInfo) error {
	email = normalizeEmail(email)
	if err := validate(s.Validate, struct {
		Email string `json:"email" validate:"required,email"`
	}{email}); err != nil {
		return err
	}
	cred, err := s.Credentials.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Info("password reset for unknown email")
		}
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := helpers.GenToken(32)
	if err != nil {
		return err
	}
	if err := s.KV.Set(ctx, helpers.KeyResetToken(tok), []byte(cred.ID), ResetTokenTTL); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}
	u, err := s.Users.Get(ctx, cred.ID)
	if err != nil {
		u = &entity.User{ID: cred.ID, Email: cred.Email}
	}
	link := s.ResetURL + "?token=" + tok
	if err := s.Mailer.PasswordReset(ctx, u, link, ResetTokenTTL, client); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", cred.ID).Warn("enqueue reset email failed")
	}
	return nil
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,pwd"`
}

// ConfirmPasswordReset consumes the token, replaces the hash and ends the
// user's session. The token is taken before the hash is written, so a failed
// write needs a new reset request.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ResetPasswordInput, client ClientInfo) error {
	if err := validate(s.Validate, in); err != nil {
		return err
	}
	b, err := s.KV.Take(ctx, helpers.KeyResetToken(in.Token))
	if errors.Is(err, kv.ErrMiss) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	uid := string(b)
	cred, err := s.Credentials.Get(ctx, uid)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	hash, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	cred.PasswordHash = hash
	if err := s.Credentials.Put(ctx, cred); err != nil {
		return err
	}

	u, err := s.Users.Get(ctx, uid)
	if err != nil {
		u = &entity.User{ID: uid, Email: cred.Email}
	}
	s.notify(ctx, AuthPasswordChanged, u)
	if s.Mailer != nil {
		if err := s.Mailer.PasswordChanged(ctx, u, client); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", uid).Warn("enqueue password changed email failed")
		}
	}
	return nil
}

// issue generates a new sid and token pair and stores the session snapshot.
func (s *AuthService) issue(ctx context.Context, u *entity.User) (*AuthResult, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return nil, err
	}
	sess, err := s.Sessions.Establish(ctx, u, sid)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Session: sess,
		Tokens:  TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp},
	}, nil
}

func (s *AuthService) indexUser(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
	}
}

// ensureUsernameFree fails when another user already holds username.
func ensureUsernameFree(ctx context.Context, users repo.UserRepository, username, selfID string) error {
	u, err := users.FindByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.ID == selfID {
		return nil
	}
	return ErrUsernameTaken
}
