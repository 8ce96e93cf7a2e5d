package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/receiving"
)

// maxUploadBytes caps the multipart read before the service-side size check
const maxUploadBytes = 20 << 20

// GRPOAttachmentHandler handles delivery-note attachments on goods receipts
type GRPOAttachmentHandler struct {
	BaseHandler
	attachmentService *receiving.AttachmentService
}

// NewGRPOAttachmentHandler creates a new GRPO attachment handler
func NewGRPOAttachmentHandler(attachmentService *receiving.AttachmentService) *GRPOAttachmentHandler {
	return &GRPOAttachmentHandler{
		attachmentService: attachmentService,
	}
}

// AttachmentDownloadData carries a presigned download URL
type AttachmentDownloadData struct {
	DownloadURL string `json:"download_url"`
}

// Upload godoc
// @Summary      Upload a delivery note
// @Description  Attach a delivery-note scan to a goods receipt
// @Tags         grpo
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        file formData file true "Delivery note file (max 20 MB)"
// @Success      201 {object} dto.Response{data=receiving.AttachmentDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/attachments [post]
func (h *GRPOAttachmentHandler) Upload(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file in form data")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachmentService.Upload(c.Request.Context(), actor, id, receiving.UploadAttachmentInput{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, attachment)
}

// List godoc
// @Summary      List attachments
// @Description  List delivery-note attachments on a goods receipt
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]receiving.AttachmentDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/attachments [get]
func (h *GRPOAttachmentHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	attachments, err := h.attachmentService.List(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, attachments)
}

// Download godoc
// @Summary      Download an attachment
// @Description  Get a presigned download URL for a delivery-note attachment
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        attachmentId path string true "Attachment ID" format(uuid)
// @Success      200 {object} dto.Response{data=AttachmentDownloadData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/attachments/{attachmentId}/download [get]
func (h *GRPOAttachmentHandler) Download(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	url, err := h.attachmentService.Download(c.Request.Context(), actor, id, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AttachmentDownloadData{DownloadURL: url})
}

// Delete godoc
// @Summary      Delete an attachment
// @Description  Remove a delivery-note attachment from a goods receipt
// @Tags         grpo
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        attachmentId path string true "Attachment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /grpo/{id}/attachments/{attachmentId} [delete]
func (h *GRPOAttachmentHandler) Delete(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, err.Error())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), actor, id, attachmentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Attachment deleted successfully"})
}
