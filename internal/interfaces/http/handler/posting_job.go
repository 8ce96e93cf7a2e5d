package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/application/posting"
)

// PostingJobHandler handles posting queue HTTP requests
type PostingJobHandler struct {
	BaseHandler
	jobService *posting.JobService
}

// NewPostingJobHandler creates a new posting job handler
func NewPostingJobHandler(jobService *posting.JobService) *PostingJobHandler {
	return &PostingJobHandler{
		jobService: jobService,
	}
}

// List godoc
// @Summary      List posting jobs
// @Description  Get a paginated list of SAP posting jobs
// @Tags         posting-jobs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(status, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        status query string false "Filter by status" Enums(pending, processing, retrying, completed, failed, cancelled)
// @Param        job_type query string false "Filter by job type" Enums(grpo, transfer, pick_list, so_invoice)
// @Success      200 {object} dto.Response{data=[]posting.JobDTO,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /posting-jobs [get]
func (h *PostingJobHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if jobType := c.Query("job_type"); jobType != "" {
		filter.Filters["job_type"] = jobType
	}

	jobs, total, err := h.jobService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, jobs, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Get a posting job
// @Description  Retrieve a posting job by its ID
// @Tags         posting-jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /posting-jobs/{id} [get]
func (h *PostingJobHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// DocumentHistory godoc
// @Summary      Get posting history for a document
// @Description  List every posting attempt recorded for one document
// @Tags         posting-jobs
// @Produce      json
// @Param        documentId path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /posting-jobs/document/{documentId} [get]
func (h *PostingJobHandler) DocumentHistory(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	jobs, err := h.jobService.DocumentHistory(c.Request.Context(), documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, jobs)
}

// Stats godoc
// @Summary      Get posting queue statistics
// @Description  Get queue depth per job status
// @Tags         posting-jobs
// @Produce      json
// @Success      200 {object} dto.Response{data=posting.QueueStats}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /posting-jobs/stats [get]
func (h *PostingJobHandler) Stats(c *gin.Context) {
	stats, err := h.jobService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// Retry godoc
// @Summary      Retry a posting job
// @Description  Requeue a failed posting job for an immediate attempt
// @Tags         posting-jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /posting-jobs/{id}/retry [post]
func (h *PostingJobHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.Retry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// Cancel godoc
// @Summary      Cancel a posting job
// @Description  Cancel a job that has not started processing
// @Tags         posting-jobs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=posting.JobDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /posting-jobs/{id}/cancel [post]
func (h *PostingJobHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}
