package receiving

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/receiving"
)

// CreateGRPOInput contains input for drafting a goods receipt
type CreateGRPOInput struct {
	PONumber      string
	POEntry       int
	CardCode      string
	CardName      string
	WarehouseCode string
	Remarks       string
}

// UpdateGRPOInput contains the mutable header fields of a draft receipt
type UpdateGRPOInput struct {
	CardName string
	Remarks  string
}

// AddItemInput contains input for adding a receipt line
type AddItemInput struct {
	ItemCode        string
	ItemDescription string
	UnitOfMeasure   string
	POLineNumber    int
	OrderedQuantity decimal.Decimal
	ReceivedQuantity decimal.Decimal
	BinLocation     string
	SerialManaged   bool
	BatchManaged    bool
	BatchNumber     string
}

// AddSerialInput contains input for recording a serial on a line
type AddSerialInput struct {
	ItemID             uuid.UUID
	SerialNumber       string
	ManufacturerSerial string
}

// ReviewInput contains QC approval or rejection input
type ReviewInput struct {
	Notes string
}

// SerialDTO is the API representation of a recorded serial
type SerialDTO struct {
	ID                 uuid.UUID `json:"id"`
	SerialNumber       string    `json:"serial_number"`
	ManufacturerSerial string    `json:"manufacturer_serial,omitempty"`
}

// ItemDTO is the API representation of a receipt line
type ItemDTO struct {
	ID               uuid.UUID       `json:"id"`
	ItemCode         string          `json:"item_code"`
	ItemDescription  string          `json:"item_description"`
	UnitOfMeasure    string          `json:"unit_of_measure,omitempty"`
	POLineNumber     int             `json:"po_line_number"`
	OrderedQuantity  decimal.Decimal `json:"ordered_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	BinLocation      string          `json:"bin_location,omitempty"`
	SerialManaged    bool            `json:"serial_managed"`
	BatchManaged     bool            `json:"batch_managed"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	Serials          []SerialDTO     `json:"serials"`
}

// GRPODTO is the API representation of a goods receipt
type GRPODTO struct {
	ID             uuid.UUID  `json:"id"`
	DocumentNumber string     `json:"document_number"`
	PONumber       string     `json:"po_number"`
	POEntry        int        `json:"po_entry,omitempty"`
	CardCode       string     `json:"card_code"`
	CardName       string     `json:"card_name"`
	WarehouseCode  string     `json:"warehouse_code"`
	Status         string     `json:"status"`
	Remarks        string     `json:"remarks,omitempty"`
	QCApproverName string     `json:"qc_approver_name,omitempty"`
	QCApprovedAt   *time.Time `json:"qc_approved_at,omitempty"`
	QCNotes        string     `json:"qc_notes,omitempty"`
	SAPDocNumber   string     `json:"sap_doc_number,omitempty"`
	SAPDocEntry    int        `json:"sap_doc_entry,omitempty"`
	PostingError   string     `json:"posting_error,omitempty"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedByName  string     `json:"created_by_name"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Items          []ItemDTO  `json:"items"`
}

// GRPOListItemDTO is the list representation without nested lines
type GRPOListItemDTO struct {
	ID             uuid.UUID `json:"id"`
	DocumentNumber string    `json:"document_number"`
	PONumber       string    `json:"po_number"`
	CardCode       string    `json:"card_code"`
	CardName       string    `json:"card_name"`
	WarehouseCode  string    `json:"warehouse_code"`
	Status         string    `json:"status"`
	ItemCount      int       `json:"item_count"`
	SAPDocNumber   string    `json:"sap_doc_number,omitempty"`
	CreatedByName  string    `json:"created_by_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AttachmentDTO is the API representation of a stored attachment
type AttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	DownloadURL string    `json:"download_url,omitempty"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toGRPODTO(doc *receiving.GRPODocument) *GRPODTO {
	dto := &GRPODTO{
		ID:             doc.ID,
		DocumentNumber: doc.DocumentNumber,
		PONumber:       doc.PONumber,
		POEntry:        doc.POEntry,
		CardCode:       doc.CardCode,
		CardName:       doc.CardName,
		WarehouseCode:  doc.WarehouseCode,
		Status:         doc.Status.String(),
		Remarks:        doc.Remarks,
		QCApproverName: doc.QCApproverName,
		QCApprovedAt:   doc.QCApprovedAt,
		QCNotes:        doc.QCNotes,
		SAPDocNumber:   doc.SAPDocNumber,
		SAPDocEntry:    doc.SAPDocEntry,
		PostingError:   doc.PostingError,
		CreatedBy:      doc.CreatedBy,
		CreatedByName:  doc.CreatedByName,
		Version:        doc.Version,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		Items:          make([]ItemDTO, len(doc.Items)),
	}
	for i, item := range doc.Items {
		dto.Items[i] = toItemDTO(&item)
	}
	return dto
}

func toItemDTO(item *receiving.GRPOItem) ItemDTO {
	dto := ItemDTO{
		ID:               item.ID,
		ItemCode:         item.ItemCode,
		ItemDescription:  item.ItemDescription,
		UnitOfMeasure:    item.UnitOfMeasure,
		POLineNumber:     item.POLineNumber,
		OrderedQuantity:  item.OrderedQuantity,
		ReceivedQuantity: item.ReceivedQuantity,
		BinLocation:      item.BinLocation,
		SerialManaged:    item.SerialManaged,
		BatchManaged:     item.BatchManaged,
		BatchNumber:      item.BatchNumber,
		Serials:          make([]SerialDTO, len(item.Serials)),
	}
	for i, s := range item.Serials {
		dto.Serials[i] = SerialDTO{
			ID:                 s.ID,
			SerialNumber:       s.SerialNumber,
			ManufacturerSerial: s.ManufacturerSerial,
		}
	}
	return dto
}

func toGRPOListItemDTO(doc *receiving.GRPODocument) GRPOListItemDTO {
	return GRPOListItemDTO{
		ID:             doc.ID,
		DocumentNumber: doc.DocumentNumber,
		PONumber:       doc.PONumber,
		CardCode:       doc.CardCode,
		CardName:       doc.CardName,
		WarehouseCode:  doc.WarehouseCode,
		Status:         doc.Status.String(),
		ItemCount:      len(doc.Items),
		SAPDocNumber:   doc.SAPDocNumber,
		CreatedByName:  doc.CreatedByName,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

func toAttachmentDTO(a *receiving.Attachment, downloadURL string) AttachmentDTO {
	return AttachmentDTO{
		ID:          a.ID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		DownloadURL: downloadURL,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}
