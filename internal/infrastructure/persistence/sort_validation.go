package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"username":       true,
	"display_name":   true,
	"email":          true,
	"role":           true,
	"active":         true,
	"warehouse_code": true,
	"last_login_at":  true,
}

// WarehouseSortFields contains allowed sort fields for warehouses
var WarehouseSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"active":     true,
}

// GRPOSortFields contains allowed sort fields for goods receipts
var GRPOSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"po_number":       true,
	"card_code":       true,
	"warehouse_code":  true,
	"status":          true,
	"qc_approved_at":  true,
}

// TransferSortFields contains allowed sort fields for serial item transfers
var TransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"from_warehouse":  true,
	"to_warehouse":    true,
	"status":          true,
	"qc_approved_at":  true,
}

// PickListSortFields contains allowed sort fields for pick lists
var PickListSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"pick_number":    true,
	"order_entry":    true,
	"order_number":   true,
	"card_code":      true,
	"warehouse_code": true,
	"status":         true,
	"qc_approved_at": true,
}

// InvoiceSortFields contains allowed sort fields for sales order invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"so_number":      true,
	"so_entry":       true,
	"card_code":      true,
	"status":         true,
}

// PostingJobSortFields contains allowed sort fields for posting jobs
var PostingJobSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"job_type":        true,
	"document_type":   true,
	"document_number": true,
	"status":          true,
	"retry_count":     true,
	"next_retry_at":   true,
	"completed_at":    true,
}

// AuditLogSortFields contains allowed sort fields for audit log entries
var AuditLogSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"event_type":     true,
	"aggregate_type": true,
	"occurred_at":    true,
}
