package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/transfer"
)

// CreateTransferInput carries the fields accepted when drafting a transfer
type CreateTransferInput struct {
	FromWarehouse string
	ToWarehouse   string
	Remarks       string
}

// AddSerialItemInput records one scanned serial for a transfer
type AddSerialItemInput struct {
	ItemCode     string
	SerialNumber string
}

// AddNonSerialItemInput records a plain quantity line
type AddNonSerialItemInput struct {
	ItemCode        string
	ItemDescription string
	Quantity        decimal.Decimal
}

// ReviewInput carries QC decision notes
type ReviewInput struct {
	Notes string
}

// TransferItemDTO is the API representation of a transfer line
type TransferItemDTO struct {
	ID               uuid.UUID       `json:"id"`
	ItemCode         string          `json:"item_code"`
	ItemDescription  string          `json:"item_description"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	SerialManaged    bool            `json:"serial_managed"`
	ValidationStatus string          `json:"validation_status"`
	ValidationError  string          `json:"validation_error,omitempty"`
	QCStatus         string          `json:"qc_status"`
}

// TransferDTO is the API representation of a serial item transfer
type TransferDTO struct {
	ID             uuid.UUID         `json:"id"`
	TransferNumber string            `json:"transfer_number"`
	FromWarehouse  string            `json:"from_warehouse"`
	ToWarehouse    string            `json:"to_warehouse"`
	Status         string            `json:"status"`
	Remarks        string            `json:"remarks,omitempty"`
	QCApproverName string            `json:"qc_approver_name,omitempty"`
	QCApprovedAt   *time.Time        `json:"qc_approved_at,omitempty"`
	QCNotes        string            `json:"qc_notes,omitempty"`
	SAPDocNumber   string            `json:"sap_doc_number,omitempty"`
	SAPDocEntry    int               `json:"sap_doc_entry,omitempty"`
	PostingError   string            `json:"posting_error,omitempty"`
	CreatedBy      uuid.UUID         `json:"created_by"`
	CreatedByName  string            `json:"created_by_name"`
	Version        int               `json:"version"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Items          []TransferItemDTO `json:"items"`
}

// TransferListItemDTO is the list representation without nested lines
type TransferListItemDTO struct {
	ID             uuid.UUID `json:"id"`
	TransferNumber string    `json:"transfer_number"`
	FromWarehouse  string    `json:"from_warehouse"`
	ToWarehouse    string    `json:"to_warehouse"`
	Status         string    `json:"status"`
	ItemCount      int       `json:"item_count"`
	SAPDocNumber   string    `json:"sap_doc_number,omitempty"`
	CreatedByName  string    `json:"created_by_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toTransferDTO(t *transfer.SerialItemTransfer) *TransferDTO {
	dto := &TransferDTO{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		FromWarehouse:  t.FromWarehouse,
		ToWarehouse:    t.ToWarehouse,
		Status:         t.Status.String(),
		Remarks:        t.Remarks,
		QCApproverName: t.QCApproverName,
		QCApprovedAt:   t.QCApprovedAt,
		QCNotes:        t.QCNotes,
		SAPDocNumber:   t.SAPDocNumber,
		SAPDocEntry:    t.SAPDocEntry,
		PostingError:   t.PostingError,
		CreatedBy:      t.CreatedBy,
		CreatedByName:  t.CreatedByName,
		Version:        t.Version,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Items:          make([]TransferItemDTO, len(t.Items)),
	}
	for i, item := range t.Items {
		dto.Items[i] = toTransferItemDTO(&item)
	}
	return dto
}

func toTransferItemDTO(item *transfer.TransferItem) TransferItemDTO {
	return TransferItemDTO{
		ID:               item.ID,
		ItemCode:         item.ItemCode,
		ItemDescription:  item.ItemDescription,
		SerialNumber:     item.SerialNumber,
		Quantity:         item.Quantity,
		SerialManaged:    item.SerialManaged,
		ValidationStatus: string(item.ValidationStatus),
		ValidationError:  item.ValidationError,
		QCStatus:         string(item.QCStatus),
	}
}

func toTransferListItemDTO(t *transfer.SerialItemTransfer) TransferListItemDTO {
	return TransferListItemDTO{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		FromWarehouse:  t.FromWarehouse,
		ToWarehouse:    t.ToWarehouse,
		Status:         t.Status.String(),
		ItemCount:      len(t.Items),
		SAPDocNumber:   t.SAPDocNumber,
		CreatedByName:  t.CreatedByName,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
