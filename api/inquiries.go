package api

import (
	"net/http"

	"github.com/Domenick1991/tourdesk/internal/httpkit"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/service/inquiry"
	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	service inquiry.InquiryUseCase
	log     *logger.Logger
}

type submitInquiryRequest struct {
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	Travelers    travelerCount `json:"travelers"`
	Destination  string        `json:"destination"`
	TravelDate   *string       `json:"travelDate"`
	TravelerType *string       `json:"travelerType"`
	Email        string        `json:"email"`
	Message      string        `json:"message"`
}

type submitInquiryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func NewInquiryHandler(service inquiry.InquiryUseCase, log *logger.Logger) *InquiryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InquiryHandler{service: service, log: log}
}

// Register mounts the public form endpoint. guards run before the handler,
// typically the body limit and the rate limiter.
func (h *InquiryHandler) Register(router *gin.RouterGroup, guards ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	router.POST("/inquiry", append(handlers, h.submit)...)
}

func (h *InquiryHandler) submit(c *gin.Context) {
	var req submitInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if httpkit.IsBodyTooLarge(err) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httpkit.Error(c, http.StatusBadRequest, inquiry.MsgInvalidInput)
		return
	}

	created, err := h.service.Submit(c.Request.Context(), inquiry.SubmitInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Travelers:    int(req.Travelers),
		Destination:  req.Destination,
		TravelDate:   req.TravelDate,
		TravelerType: req.TravelerType,
		Message:      req.Message,
	})
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	c.JSON(http.StatusCreated, submitInquiryResponse{
		Success: true,
		Message: "Inquiry submitted successfully",
		ID:      created.ID,
	})
}
