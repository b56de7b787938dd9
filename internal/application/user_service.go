package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
)

type UpdateProfileInput struct {
	FirstName string `json:"firstName" validate:"required,max=60"`
	LastName  string `json:"lastName" validate:"max=60"`
	Username  string `json:"username" validate:"required,username"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Address   string `json:"address" validate:"max=300"`
}

// UserService serves the caller's profile and the admin user screens.
type UserService struct {
	Users       repo.UserRepository
	Credentials repo.CredentialRepository
	Sessions    *SessionService
	Index       UserIndex
	Validate    *validator.Validate
	Logger      *logrus.Logger
	Now         func() time.Time
}

func NewUserService(users repo.UserRepository, creds repo.CredentialRepository, sessions *SessionService, index UserIndex, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Credentials: creds, Sessions: sessions, Index: index, Validate: defaultValidator, Logger: logger, Now: time.Now}
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *UserService) Profile(ctx context.Context, sess *Session) (*entity.User, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	return s.Users.Get(ctx, sess.UserID)
}

// UpdateProfile writes the editable profile fields and refreshes the session
// snapshot. The username check is a read before the write and can race.
func (s *UserService) UpdateProfile(ctx context.Context, sess *Session, in UpdateProfileInput) (*entity.User, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	if err := ensureUsernameFree(ctx, s.Users, in.Username, sess.UserID); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"firstName": strings.TrimSpace(in.FirstName),
		"lastName":  strings.TrimSpace(in.LastName),
		"username":  in.Username,
		"phone":     in.Phone,
		"address":   in.Address,
		"updatedAt": s.now(),
	}
	return s.update(ctx, sess.UserID, fields)
}

// SetAvatar points the profile at an uploaded image.
func (s *UserService) SetAvatar(ctx context.Context, sess *Session, url string) (*entity.User, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	return s.update(ctx, sess.UserID, map[string]any{"avatarUrl": url, "updatedAt": s.now()})
}

// List is the admin user list filtered by a substring match on email,
// username and name. With an index configured, index hits are ranked first.
func (s *UserService) List(ctx context.Context, sess *Session, q string) ([]*entity.User, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := FilterBySubstring(users, q, func(u *entity.User) []string {
		return []string{u.Email, u.Username, u.FullName()}
	})
	if strings.TrimSpace(q) == "" || s.Index == nil || len(out) < 2 {
		return out, nil
	}
	ids, err := s.Index.SearchUsers(ctx, q, 50)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("user search index failed; keeping store order")
		}
		return out, nil
	}
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i + 1
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank[out[i].ID], rank[out[j].ID]
		if ri == 0 || rj == 0 {
			return ri != 0 && rj == 0
		}
		return ri < rj
	})
	return out, nil
}

func (s *UserService) Get(ctx context.Context, sess *Session, id string) (*entity.User, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	return s.Users.Get(ctx, id)
}

func (s *UserService) SetRole(ctx context.Context, sess *Session, id string, role entity.Role) (*entity.User, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if !entity.ValidRole(role) || role == entity.RoleGuest {
		return nil, ErrInvalidRole
	}
	return s.update(ctx, id, map[string]any{"role": role, "updatedAt": s.now()})
}

// SetStatus bans or unbans a user. Banning drops the stored session so the
// next request is rejected.
func (s *UserService) SetStatus(ctx context.Context, sess *Session, id string, status entity.UserStatus) (*entity.User, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if !entity.ValidUserStatus(status) {
		return nil, ErrInvalidStatus
	}
	u, err := s.update(ctx, id, map[string]any{"status": status, "updatedAt": s.now()})
	if err != nil {
		return nil, err
	}
	if u.IsBanned() && s.Sessions != nil {
		if err := s.Sessions.Clear(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("session clear on ban failed")
		}
	}
	return u, nil
}

// Delete removes the profile, credentials and session. Subcollections such
// as cart and wishlist are not cascaded.
func (s *UserService) Delete(ctx context.Context, sess *Session, id string) ([]*entity.User, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return nil, err
	}
	if s.Credentials != nil {
		if err := s.Credentials.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	if s.Sessions != nil {
		_ = s.Sessions.Clear(ctx, id)
	}
	if s.Index != nil {
		if err := s.Index.DeleteUser(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("unindex user failed")
		}
	}
	return s.Users.List(ctx)
}

func (s *UserService) update(ctx context.Context, id string, fields map[string]any) (*entity.User, error) {
	if err := s.Users.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Sessions != nil {
		if _, err := s.Sessions.Reconcile(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrUserBanned) && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("session reconcile failed")
		}
	}
	if s.Index != nil {
		if err := s.Index.IndexUser(ctx, u); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("index user failed")
		}
	}
	return u, nil
}
