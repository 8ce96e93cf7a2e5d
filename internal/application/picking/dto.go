package picking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/picking"
)

// CreatePickListInput drafts a pick list against an open sales order
type CreatePickListInput struct {
	OrderEntry    int
	WarehouseCode string
	Remarks       string
}

// UpdatePickListInput carries the mutable header fields
type UpdatePickListInput struct {
	Remarks string
}

// PickQuantityInput records the picked amount for a non-serial line
type PickQuantityInput struct {
	LineID   uuid.UUID
	Quantity decimal.Decimal
}

// PickSerialInput records one scanned serial for a line
type PickSerialInput struct {
	LineID       uuid.UUID
	SerialNumber string
}

// ReviewInput carries QC decision notes
type ReviewInput struct {
	Notes string
}

// PickedSerialDTO is the API representation of a picked serial
type PickedSerialDTO struct {
	ID           uuid.UUID `json:"id"`
	SerialNumber string    `json:"serial_number"`
	SystemNumber int       `json:"system_number"`
}

// LineDTO is the API representation of a pick list line
type LineDTO struct {
	ID              uuid.UUID         `json:"id"`
	OrderRowID      int               `json:"order_row_id"`
	ItemCode        string            `json:"item_code"`
	ItemDescription string            `json:"item_description"`
	OrderedQuantity decimal.Decimal   `json:"ordered_quantity"`
	PickedQuantity  decimal.Decimal   `json:"picked_quantity"`
	WarehouseCode   string            `json:"warehouse_code"`
	SerialManaged   bool              `json:"serial_managed"`
	Serials         []PickedSerialDTO `json:"serials"`
}

// PickListDTO is the API representation of a pick list
type PickListDTO struct {
	ID               uuid.UUID  `json:"id"`
	PickNumber       string     `json:"pick_number"`
	OrderEntry       int        `json:"order_entry"`
	OrderNumber      int        `json:"order_number"`
	CardCode         string     `json:"card_code"`
	CardName         string     `json:"card_name"`
	WarehouseCode    string     `json:"warehouse_code"`
	Status           string     `json:"status"`
	Remarks          string     `json:"remarks,omitempty"`
	QCApproverName   string     `json:"qc_approver_name,omitempty"`
	QCApprovedAt     *time.Time `json:"qc_approved_at,omitempty"`
	QCNotes          string     `json:"qc_notes,omitempty"`
	SAPAbsoluteEntry int        `json:"sap_absolute_entry,omitempty"`
	PostingError     string     `json:"posting_error,omitempty"`
	CreatedBy        uuid.UUID  `json:"created_by"`
	CreatedByName    string     `json:"created_by_name"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Lines            []LineDTO  `json:"lines"`
}

// PickListListItemDTO is the list representation without nested lines
type PickListListItemDTO struct {
	ID               uuid.UUID `json:"id"`
	PickNumber       string    `json:"pick_number"`
	OrderEntry       int       `json:"order_entry"`
	OrderNumber      int       `json:"order_number"`
	CardCode         string    `json:"card_code"`
	CardName         string    `json:"card_name"`
	Status           string    `json:"status"`
	LineCount        int       `json:"line_count"`
	SAPAbsoluteEntry int       `json:"sap_absolute_entry,omitempty"`
	CreatedByName    string    `json:"created_by_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toPickListDTO(p *picking.PickList) *PickListDTO {
	dto := &PickListDTO{
		ID:               p.ID,
		PickNumber:       p.PickNumber,
		OrderEntry:       p.OrderEntry,
		OrderNumber:      p.OrderNumber,
		CardCode:         p.CardCode,
		CardName:         p.CardName,
		WarehouseCode:    p.WarehouseCode,
		Status:           p.Status.String(),
		Remarks:          p.Remarks,
		QCApproverName:   p.QCApproverName,
		QCApprovedAt:     p.QCApprovedAt,
		QCNotes:          p.QCNotes,
		SAPAbsoluteEntry: p.SAPAbsoluteEntry,
		PostingError:     p.PostingError,
		CreatedBy:        p.CreatedBy,
		CreatedByName:    p.CreatedByName,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Lines:            make([]LineDTO, len(p.Lines)),
	}
	for i, line := range p.Lines {
		dto.Lines[i] = toLineDTO(&line)
	}
	return dto
}

func toLineDTO(line *picking.PickListLine) LineDTO {
	dto := LineDTO{
		ID:              line.ID,
		OrderRowID:      line.OrderRowID,
		ItemCode:        line.ItemCode,
		ItemDescription: line.ItemDescription,
		OrderedQuantity: line.OrderedQuantity,
		PickedQuantity:  line.PickedQuantity,
		WarehouseCode:   line.WarehouseCode,
		SerialManaged:   line.SerialManaged,
		Serials:         make([]PickedSerialDTO, len(line.Serials)),
	}
	for i, s := range line.Serials {
		dto.Serials[i] = PickedSerialDTO{
			ID:           s.ID,
			SerialNumber: s.SerialNumber,
			SystemNumber: s.SystemNumber,
		}
	}
	return dto
}

func toPickListListItemDTO(p *picking.PickList) PickListListItemDTO {
	return PickListListItemDTO{
		ID:               p.ID,
		PickNumber:       p.PickNumber,
		OrderEntry:       p.OrderEntry,
		OrderNumber:      p.OrderNumber,
		CardCode:         p.CardCode,
		CardName:         p.CardName,
		Status:           p.Status.String(),
		LineCount:        len(p.Lines),
		SAPAbsoluteEntry: p.SAPAbsoluteEntry,
		CreatedByName:    p.CreatedByName,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
