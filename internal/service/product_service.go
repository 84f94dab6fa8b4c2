package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"fast-order/internal/apperror"
	"fast-order/internal/models"
	"fast-order/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService manages the catalog. Stock changes after creation go
// through the ledger.
type ProductService struct {
	products ProductStore
	ledger   *StockLedger
	timeout  time.Duration
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(products ProductStore, ledger *StockLedger, timeout time.Duration) *ProductService {
	return &ProductService{
		products: products,
		ledger:   ledger,
		timeout:  timeout,
		logger:   util.GetLogger(),
	}
}

// ProductRequest carries the fields of a new or updated product. Stock is
// only read on create.
type ProductRequest struct {
	Name        string          `json:"name"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

type PriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type RestockRequest struct {
	Amount int `json:"amount"`
}

func (r *ProductRequest) validate() error {
	name := strings.TrimSpace(r.Name)
	switch {
	case utf8.RuneCountInString(name) < 4 || utf8.RuneCountInString(name) > 60:
		return apperror.InvalidRequest("The product name must be between 4 and 60 characters long.")
	case r.Stock < 0:
		return apperror.InvalidRequest("The stock cannot be negative.")
	case !r.Price.IsPositive():
		return apperror.InvalidRequest("The price must be positive.")
	case utf8.RuneCountInString(r.Description) < 10 || utf8.RuneCountInString(r.Description) > 200:
		return apperror.InvalidRequest("The description must be between 10 and 200 characters long.")
	}
	return nil
}

// CreateProduct adds a product with its initial stock
func (s *ProductService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Stock:       req.Stock,
		Price:       req.Price,
		Description: req.Description,
	}
	if err := persistExec(ctx, s.timeout, "create_product", func(ctx context.Context) error {
		return s.products.CreateProduct(ctx, product)
	}); err != nil {
		return nil, storeErr(err, "Product")
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := persist(ctx, s.timeout, "get_product", func(ctx context.Context) (*models.Product, error) {
		return s.products.GetProductByID(ctx, id)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return product, nil
}

// GetProductByName retrieves a product by its unique name
func (s *ProductService) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	product, err := persist(ctx, s.timeout, "get_product_by_name", func(ctx context.Context) (*models.Product, error) {
		return s.products.GetProductByName(ctx, name)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return product, nil
}

// ListProducts returns the whole catalog
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := persist(ctx, s.timeout, "list_products", s.products.GetProducts)
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	return products, nil
}

// UpdateProduct rewrites name, price and description. The stock field of
// req is ignored.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Description: req.Description,
	}
	affected, err := persist(ctx, s.timeout, "update_product", func(ctx context.Context) (int64, error) {
		return s.products.UpdateProduct(ctx, product)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if affected == 0 {
		return nil, apperror.NotFound("Product")
	}
	return s.GetProduct(ctx, id)
}

// UpdatePrice sets a new price on a product
func (s *ProductService) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*models.Product, error) {
	if !price.IsPositive() {
		return nil, apperror.InvalidRequest("The price must be positive.")
	}

	affected, err := persist(ctx, s.timeout, "update_product_price", func(ctx context.Context) (int64, error) {
		return s.products.UpdateProductPrice(ctx, id, price)
	})
	if err != nil {
		return nil, storeErr(err, "Product")
	}
	if affected == 0 {
		return nil, apperror.NotFound("Product")
	}
	return s.GetProduct(ctx, id)
}

// Restock adds amount units to the product through the ledger
func (s *ProductService) Restock(ctx context.Context, id uuid.UUID, amount int) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	if err := s.ledger.Increase(ctx, id, amount); err != nil {
		return nil, err
	}

	s.logger.Info("Product restocked", zap.String("product_id", id.String()), zap.Int("amount", amount))
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product that no order references
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	affected, err := persist(ctx, s.timeout, "delete_product", func(ctx context.Context) (int64, error) {
		return s.products.DeleteProduct(ctx, id)
	})
	if err != nil {
		return storeErr(err, "Product")
	}
	if affected == 0 {
		return apperror.NotFound("Product")
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}
