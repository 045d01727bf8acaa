package products

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/magusbylili/storefront-backend/pkg/db/models"
)

// ProductDTO is the transport shape for catalog listings.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Stock       *int      `json:"stock,omitempty"`
	Category    *string   `json:"category,omitempty"`
	ImageURLs   []string  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the admin payload for a new listing. The price can
// arrive either as integer cents or as a major-unit decimal string ("1500.50"
// in Price); the major form is converted to cents once, here at the boundary.
type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,min=2,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents  int64    `json:"price_cents" validate:"gte=0"`
	Price       *string  `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=120"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// UpdateProductRequest carries partial updates; nil fields stay untouched.
type UpdateProductRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	PriceCents  *int64   `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	Price       *string  `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=120"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
}

// ListFilters describe the supported knobs for the browse endpoint.
type ListFilters struct {
	Category string
	Query    string
	Sort     string
}

// CategoryDTO summarizes one catalog category for the storefront nav.
type CategoryDTO struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		Category:    p.Category,
		ImageURLs:   append([]string{}, p.ImageURLs...),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r CreateProductRequest) ToModel() *models.Product {
	return &models.Product{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Stock:       r.Stock,
		Category:    r.Category,
		ImageURLs:   pq.StringArray(append([]string{}, r.ImageURLs...)),
		ImagePaths:  pq.StringArray{},
	}
}

// Slugify lowers a category name into its URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
