package persistence

import (
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
)

// applyPaginationAndOrder applies pagination and whitelist-validated ordering
// to a query. Ordering falls back to created_at DESC when the requested field
// is not in the whitelist.
func applyPaginationAndOrder(query *gorm.DB, filter shared.Filter, sortFields map[string]bool) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, sortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}
