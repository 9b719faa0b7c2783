package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
)

// CatalogService reads the public product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, q models.ProductQuery) (models.ProductList, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
}

type catalogService struct {
	client client.Client
}

func NewCatalogService(c client.Client) CatalogService {
	return &catalogService{client: c}
}

func (s *catalogService) ListProducts(ctx context.Context, q models.ProductQuery) (models.ProductList, error) {
	return client.Fetch[models.ProductList](ctx, s.client, "/products", client.Request{Query: productQuery(q)})
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	if id == "" {
		return models.Product{}, fmt.Errorf("product id: %w", common.ErrorValidation)
	}

	p, err := client.Fetch[models.Product](ctx, s.client, "/products/"+url.PathEscape(id), client.Request{})
	if err != nil {
		return models.Product{}, err
	}
	if p.ID == "" {
		return models.Product{}, fmt.Errorf("product %s: %w", id, common.ErrorNotFound)
	}
	return p, nil
}

func productQuery(q models.ProductQuery) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}
