package shared

// DocumentStatus is the lifecycle status shared by warehouse documents
// (goods receipts, serial transfers, pick lists). Documents are drafted,
// submitted for QC, approved, and finally posted to the ERP. Rejection can
// happen at QC time or when ERP posting permanently fails.
type DocumentStatus string

const (
	DocumentStatusDraft      DocumentStatus = "draft"
	DocumentStatusSubmitted  DocumentStatus = "submitted"
	DocumentStatusQCApproved DocumentStatus = "qc_approved"
	DocumentStatusRejected   DocumentStatus = "rejected"
	DocumentStatusPosted     DocumentStatus = "posted"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusSubmitted, DocumentStatusQCApproved,
		DocumentStatusRejected, DocumentStatusPosted:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch s {
	case DocumentStatusDraft:
		return target == DocumentStatusSubmitted
	case DocumentStatusSubmitted:
		return target == DocumentStatusQCApproved || target == DocumentStatusRejected
	case DocumentStatusQCApproved:
		return target == DocumentStatusPosted || target == DocumentStatusRejected
	case DocumentStatusRejected:
		return target == DocumentStatusDraft
	case DocumentStatusPosted:
		return false // Terminal state
	}
	return false
}

// IsEditable returns true while document content may still change
func (s DocumentStatus) IsEditable() bool {
	return s == DocumentStatusDraft
}
