package persistence

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

const (
	usersCollection         = "users"
	credentialsCollection   = "credentials"
	productsCollection      = "products"
	categoriesCollection    = "categories"
	brandsCollection        = "brands"
	ordersCollection        = "orders"
	notificationsCollection = "notifications"

	cartSubcollection     = "cart"
	wishlistSubcollection = "wishlist"
	reviewsSubcollection  = "reviews"
)

// decodeDoc decodes doc and copies its id onto the entity via setID.
func decodeDoc[T any](doc docstore.Document, setID func(*T, string)) (*T, error) {
	v := new(T)
	if err := docstore.Decode(doc, v); err != nil {
		return nil, err
	}
	if setID != nil {
		setID(v, doc.ID)
	}
	return v, nil
}

func decodeAll[T any](docs []docstore.Document, setID func(*T, string)) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		v, err := decodeDoc(d, setID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func getAs[T any](ctx context.Context, s docstore.Store, collection, id string, setID func(*T, string)) (*T, error) {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return decodeDoc(doc, setID)
}

func listAs[T any](ctx context.Context, s docstore.Store, collection string, setID func(*T, string)) ([]*T, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, setID)
}

func whereAs[T any](ctx context.Context, s docstore.Store, collection, field string, value any, setID func(*T, string)) ([]*T, error) {
	docs, err := s.Where(ctx, collection, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs, setID)
}

// add writes v under id, or under a generated id when id is empty, and
// returns the id used.
func add(ctx context.Context, s docstore.Store, collection, id string, v any) (string, error) {
	data, err := docstore.Encode(v)
	if err != nil {
		return "", err
	}
	if id == "" {
		return s.Create(ctx, collection, data)
	}
	return id, s.Set(ctx, collection, id, data)
}
