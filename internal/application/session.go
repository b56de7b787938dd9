package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/kv"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// Session is the merged identity and profile of the caller. Guests carry no
// user id and may only read.
type Session struct {
	UserID        string       `json:"uid,omitempty"`
	SID           string       `json:"sid,omitempty"`
	Email         string       `json:"email,omitempty"`
	Profile       *entity.User `json:"profile,omitempty"`
	Guest         bool         `json:"guest"`
	EstablishedAt time.Time    `json:"establishedAt"`
	// Restored is set when the session came from the stored snapshot rather
	// than a live profile read.
	Restored bool `json:"-"`
}

// GuestSession returns the read-only session used when nobody is signed in.
func GuestSession() *Session {
	return &Session{Guest: true}
}

// RequireMember fails for guests. Write paths call it before touching a store.
func (s *Session) RequireMember() error {
	if s == nil || s.Guest || s.UserID == "" {
		return ErrGuestForbidden
	}
	return nil
}

// RequireAdmin fails unless the session profile has the admin role.
func (s *Session) RequireAdmin() error {
	if err := s.RequireMember(); err != nil {
		return err
	}
	if !s.Profile.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *Session) IsAdmin() bool {
	return s != nil && !s.Guest && s.Profile.IsAdmin()
}

// DisplayName is the name shown on reviews and emails.
func (s *Session) DisplayName() string {
	if s == nil || s.Profile == nil {
		return ""
	}
	if n := s.Profile.FullName(); n != "" {
		return n
	}
	return s.Profile.Username
}

// SessionService persists one session snapshot per user in the key-value store.
type SessionService struct {
	KV     kv.Store
	Users  repo.UserRepository
	TTL    time.Duration
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewSessionService(store kv.Store, users repo.UserRepository, ttl time.Duration, logger *logrus.Logger) *SessionService {
	return &SessionService{KV: store, Users: users, TTL: ttl, Logger: logger, Now: time.Now}
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Establish merges profile into a fresh session bound to sid and stores it.
func (s *SessionService) Establish(ctx context.Context, u *entity.User, sid string) (*Session, error) {
	sess := &Session{
		UserID:        u.ID,
		SID:           sid,
		Email:         u.Email,
		Profile:       u,
		EstablishedAt: s.now(),
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Restore returns the last stored snapshot without contacting the profile
// store. The profile may be stale.
func (s *SessionService) Restore(ctx context.Context, uid string) (*Session, error) {
	b, err := s.KV.Get(ctx, helpers.KeySession(uid))
	if errors.Is(err, kv.ErrMiss) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", uid).Warn("corrupt session snapshot dropped")
		}
		_ = s.KV.Delete(ctx, helpers.KeySession(uid))
		return nil, ErrSessionNotFound
	}
	sess.Restored = true
	return &sess, nil
}

// Reconcile re-reads the live profile and rewrites the snapshot. A vanished
// or banned user loses the session.
func (s *SessionService) Reconcile(ctx context.Context, uid string) (*Session, error) {
	sess, err := s.Restore(ctx, uid)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.Get(ctx, uid)
	if errors.Is(err, repo.ErrNotFound) {
		_ = s.Clear(ctx, uid)
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.IsBanned() {
		_ = s.Clear(ctx, uid)
		return nil, ErrUserBanned
	}
	sess.Profile = u
	sess.Email = u.Email
	sess.Restored = false
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) Clear(ctx context.Context, uid string) error {
	return s.KV.Delete(ctx, helpers.KeySession(uid))
}

// HandleAuthEvent keeps snapshots in step with sign-outs and credential changes.
func (s *SessionService) HandleAuthEvent(ctx context.Context, ev AuthEvent) {
	switch ev.Kind {
	case AuthSignedOut, AuthPasswordChanged:
		if err := s.Clear(ctx, ev.UserID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", ev.UserID).Warn("session clear failed")
		}
	}
}

func (s *SessionService) save(ctx context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.KV.Set(ctx, helpers.KeySession(sess.UserID), b, s.TTL); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", sess.UserID).Warn("session save failed")
		}
		return err
	}
	return nil
}
