package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base interface for all repositories
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// ScopeToCreator restricts results to documents created by the given user.
// Handlers apply this for users without elevated document visibility.
func (f *Filter) ScopeToCreator(userID uuid.UUID) {
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	f.Filters["created_by"] = userID
}

// ScopeToReviewer restricts results to documents the given user created
// plus anyone's documents awaiting QC review. Applied for QC actors, who
// review submitted work but do not browse other users' drafts.
func (f *Filter) ScopeToReviewer(userID uuid.UUID) {
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	f.Filters["reviewer_id"] = userID
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
