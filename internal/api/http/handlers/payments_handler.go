package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/repository"
	"github.com/civic-care/issue-service/internal/service"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// PaymentsHandler manages subscription payments.
type PaymentsHandler struct {
	service *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(paymentService *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{service: paymentService}
}

// Subscribe POST /payments/subscribe.
func (h *PaymentsHandler) Subscribe(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.SubscribeRequest
	_ = c.BodyParser(&req)

	payment, err := h.service.Subscribe(c.UserContext(), requester, req.Method)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, paymentResponse(payment))
}

// ListMine GET /payments/my.
func (h *PaymentsHandler) ListMine(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	payments, err := h.service.ListMine(c.UserContext(), requester)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, paymentResponses(payments))
}

// ListAll GET /admin/payments.
func (h *PaymentsHandler) ListAll(c *fiber.Ctx) error {
	payments, err := h.service.ListAll(c.UserContext(), repository.PaymentFilter{
		Email:    c.Query("email"),
		MonthKey: c.Query("month"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, paymentResponses(payments))
}
