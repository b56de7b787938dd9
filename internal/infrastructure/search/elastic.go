package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// Elastic indexes products and users and runs multi_match searches over them.
type Elastic struct {
	ES            *elasticsearch.Client
	ProductsIndex string
	UsersIndex    string
	Logger        *logrus.Logger
}

func NewElastic(es *elasticsearch.Client, productsIndex, usersIndex string, logger *logrus.Logger) *Elastic {
	return &Elastic{ES: es, ProductsIndex: productsIndex, UsersIndex: usersIndex, Logger: logger}
}

func (e *Elastic) IndexProduct(ctx context.Context, p *entity.Product) error {
	return e.index(ctx, e.ProductsIndex, p.ID, map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"categoryId":  p.CategoryID,
		"brandId":     p.BrandID,
		"colors":      p.Colors,
		"price":       p.Price.String(),
		"updatedAt":   p.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func (e *Elastic) IndexUser(ctx context.Context, u *entity.User) error {
	return e.index(ctx, e.UsersIndex, u.ID, map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"username":  u.Username,
		"name":      u.FullName(),
		"role":      string(u.Role),
		"status":    string(u.Status),
		"updatedAt": u.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func (e *Elastic) DeleteProduct(ctx context.Context, id string) error {
	return e.delete(ctx, e.ProductsIndex, id)
}

func (e *Elastic) DeleteUser(ctx context.Context, id string) error {
	return e.delete(ctx, e.UsersIndex, id)
}

// SearchProducts returns matching product ids, best match first.
func (e *Elastic) SearchProducts(ctx context.Context, q string, size int) ([]string, error) {
	return e.search(ctx, e.ProductsIndex, q, []string{"title^3", "description", "colors"}, size)
}

func (e *Elastic) SearchUsers(ctx context.Context, q string, size int) ([]string, error) {
	return e.search(ctx, e.UsersIndex, q, []string{"email^2", "username^2", "name"}, size)
}

func (e *Elastic) index(ctx context.Context, index, id string, doc map[string]any) error {
	if e.ES == nil || index == "" {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: index, DocumentID: id, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, e.ES)
	if err != nil {
		if e.Logger != nil {
			e.Logger.WithError(err).WithFields(logrus.Fields{"index": index, "id": id}).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if e.Logger != nil {
			e.Logger.WithFields(logrus.Fields{"index": index, "id": id, "status": res.Status()}).Warn("es index response error")
		}
		return fmt.Errorf("es index %s: %s", index, res.Status())
	}
	return nil
}

func (e *Elastic) delete(ctx context.Context, index, id string) error {
	if e.ES == nil || index == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, e.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// 404 means it was never indexed
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s/%s: %s", index, id, res.Status())
	}
	return nil
}

func (e *Elastic) search(ctx context.Context, index, q string, fields []string, size int) ([]string, error) {
	if e.ES == nil || index == "" {
		return []string{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := e.ES.Search(e.ES.Search.WithContext(c), e.ES.Search.WithIndex(index), e.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search %s: %s", index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}
