package persistence

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

func setUserID(u *entity.User, id string) { u.ID = id }

type UserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*entity.User, error) {
	return getAs(ctx, r.store, usersCollection, id, setUserID)
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return listAs(ctx, r.store, usersCollection, setUserID)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *UserRepository) findOne(ctx context.Context, field, value string) (*entity.User, error) {
	users, err := whereAs(ctx, r.store, usersCollection, field, value, setUserID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return users[0], nil
}

// Put writes the whole profile under u.ID.
func (r *UserRepository) Put(ctx context.Context, u *entity.User) error {
	_, err := add(ctx, r.store, usersCollection, u.ID, u)
	return err
}

func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, usersCollection, id, fields)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, usersCollection, id)
}

type CredentialRepository struct {
	store docstore.Store
}

func NewCredentialRepository(store docstore.Store) *CredentialRepository {
	return &CredentialRepository{store: store}
}

func setCredentialID(c *entity.Credential, id string) { c.ID = id }

func (r *CredentialRepository) Get(ctx context.Context, id string) (*entity.Credential, error) {
	return getAs(ctx, r.store, credentialsCollection, id, setCredentialID)
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	creds, err := whereAs(ctx, r.store, credentialsCollection, "email", email, setCredentialID)
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, repository.ErrNotFound
	}
	return creds[0], nil
}

func (r *CredentialRepository) Put(ctx context.Context, c *entity.Credential) error {
	_, err := add(ctx, r.store, credentialsCollection, c.ID, c)
	return err
}

func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, credentialsCollection, id)
}

var (
	_ repository.UserRepository       = (*UserRepository)(nil)
	_ repository.CredentialRepository = (*CredentialRepository)(nil)
)
