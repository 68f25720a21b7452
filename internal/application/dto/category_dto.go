package dto

import (
	"time"

	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// CreateCategoryRequest is the body for POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryResponse is the wire shape of a category.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategoryResponse maps the entity to its wire shape.
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}
