package identity

import (
	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Actor identifies the authenticated user performing a command. Handlers
// build it from JWT claims; services use it for ownership checks and
// creator scoping.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// CanSee reports whether the actor may read a document created by ownerID
// in the given lifecycle status. QC reviewers see their own documents and
// anyone's submitted documents, nothing else.
func (a Actor) CanSee(ownerID uuid.UUID, status string) bool {
	if a.Role.CanSeeAllDocuments() || a.ID == ownerID {
		return true
	}
	return a.Role.ReviewsSubmittedDocuments() && status == shared.DocumentStatusSubmitted.String()
}

// CanReview reports whether the actor may act on a document as a QC
// reviewer, regardless of who created it or its current state. The state
// machine decides whether the decision itself is valid.
func (a Actor) CanReview() bool {
	return a.Role.HasPermission(PermissionDocumentApprove)
}

// ScopeFilter applies the actor's document visibility to a list filter
func (a Actor) ScopeFilter(filter *shared.Filter) {
	switch {
	case a.Role.CanSeeAllDocuments():
	case a.Role.ReviewsSubmittedDocuments():
		filter.ScopeToReviewer(a.ID)
	default:
		filter.ScopeToCreator(a.ID)
	}
}

// CanModify reports whether the actor may edit a document created by
// ownerID. QC users review documents but do not edit other users' drafts.
func (a Actor) CanModify(ownerID uuid.UUID) bool {
	return a.Role == RoleAdmin || a.Role == RoleManager || a.ID == ownerID
}
