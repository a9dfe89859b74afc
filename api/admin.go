package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/httpkit"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/service/inquiry"
	"github.com/Domenick1991/tourdesk/internal/service/stats"
	"github.com/gin-gonic/gin"
)

const msgInvalidID = "invalid inquiry id"

type AdminHandler struct {
	inquiries inquiry.InquiryUseCase
	stats     stats.StatsUseCase
	log       *logger.Logger
}

type listInquiriesResponse struct {
	Inquiries []domain.Inquiry `json:"inquiries"`
}

type updateInquiryRequest struct {
	Status *string        `json:"status"`
	Notes  optionalString `json:"notes"`
}

type updateInquiryResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Inquiry *domain.Inquiry `json:"inquiry"`
}

type deleteInquiryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewAdminHandler(inquiries inquiry.InquiryUseCase, summary stats.StatsUseCase, log *logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{inquiries: inquiries, stats: summary, log: log}
}

// Register mounts the admin routes on a group that is expected to carry
// the Basic auth middleware.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/inquiries", h.list)
	router.PUT("/inquiries/:id", h.update)
	router.DELETE("/inquiries/:id", h.remove)
	router.GET("/stats", h.summary)
}

func (h *AdminHandler) list(c *gin.Context) {
	items, err := h.inquiries.List(c.Request.Context())
	if httpkit.HandleError(c, h.log, err) {
		return
	}
	if items == nil {
		items = []domain.Inquiry{}
	}
	c.JSON(http.StatusOK, listInquiriesResponse{Inquiries: items})
}

func (h *AdminHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, inquiry.MsgInvalidInput)
		return
	}

	updated, err := h.inquiries.Update(c.Request.Context(), id, inquiry.UpdateInput{
		Status:   req.Status,
		Notes:    req.Notes.Value,
		NotesSet: req.Notes.Set,
	})
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	c.JSON(http.StatusOK, updateInquiryResponse{
		Success: true,
		Message: "Inquiry updated successfully",
		Inquiry: updated,
	})
}

func (h *AdminHandler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.log, h.inquiries.Remove(c.Request.Context(), id)) {
		return
	}

	c.JSON(http.StatusOK, deleteInquiryResponse{
		Success: true,
		Message: "Inquiry deleted successfully",
	})
}

func (h *AdminHandler) summary(c *gin.Context) {
	result, err := h.stats.Compute(c.Request.Context())
	if httpkit.HandleError(c, h.log, err) {
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}
