package identity

// Role is the access level of a user. The warehouse tool runs with a fixed
// role set instead of configurable role records.
type Role string

const (
	// RoleAdmin manages users and every document
	RoleAdmin Role = "admin"
	// RoleManager sees all documents and approves QC
	RoleManager Role = "manager"
	// RoleQC approves or rejects submitted documents
	RoleQC Role = "qc"
	// RoleUser creates and submits own documents
	RoleUser Role = "user"
)

// Permission names checked by the HTTP layer
const (
	PermissionDocumentApprove = "document:approve"
	PermissionUserManage      = "user:manage"
	PermissionJobManage       = "job:manage"
	PermissionAuditRead       = "audit:read"
)

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleQC, RoleUser:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Permissions returns the permission names granted by the role
func (r Role) Permissions() []string {
	switch r {
	case RoleAdmin:
		return []string{PermissionDocumentApprove, PermissionUserManage, PermissionJobManage, PermissionAuditRead}
	case RoleManager:
		return []string{PermissionDocumentApprove, PermissionJobManage}
	case RoleQC:
		return []string{PermissionDocumentApprove}
	default:
		return []string{}
	}
}

// HasPermission checks whether the role grants a permission
func (r Role) HasPermission(permission string) bool {
	for _, p := range r.Permissions() {
		if p == permission {
			return true
		}
	}
	return false
}

// CanSeeAllDocuments reports whether the role bypasses creator scoping
// entirely. QC reviewers do not: they see their own documents plus
// submitted ones awaiting review.
func (r Role) CanSeeAllDocuments() bool {
	return r == RoleAdmin || r == RoleManager
}

// ReviewsSubmittedDocuments reports whether the role additionally sees
// other users' documents once they are submitted for QC review.
func (r Role) ReviewsSubmittedDocuments() bool {
	return r == RoleQC
}
