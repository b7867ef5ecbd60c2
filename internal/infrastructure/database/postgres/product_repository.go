// internal/infrastructure/database/postgres/product_repository.go
package postgres

import (
	"context"
	"strings"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// ProductRepository stores products in the products table
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "create product")
}

// Update writes every column, so a cleared promotion is stored as NULL
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	result := r.db.WithContext(ctx).
		Model(&product.Product{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if result.Error != nil {
		return translate(result.Error, "update product")
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&product.Product{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find product")
	}
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	products := make([]*product.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translate(err, "find products")
	}
	return products, nil
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter) ([]*product.Product, error) {
	query := r.db.WithContext(ctx).Model(&product.Product{})

	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
	}

	products := make([]*product.Product, 0)
	if err := query.Order("id ASC").Find(&products).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
