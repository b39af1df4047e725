package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/integration/stripe"
	"github.com/laundrybox/reconciler/internal/logger"
)

type PaymentHandler struct {
	processor *stripe.PaymentProcessor
	log       *logger.Logger
}

func NewPaymentHandler(processor *stripe.PaymentProcessor, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{processor: processor, log: log}
}

// @Summary Initiate a subscription payment
// @Description Creates the Stripe subscription for the cart and returns the client secret of its first payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body stripe.InitiatePaymentRequest true "Payment request"
// @Success 201 {object} stripe.InitiatePaymentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /payments/initiate [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req stripe.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.processor.InitiatePayment(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Apply the cart's promotion code
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body stripe.UpdatePaymentRequest true "Update request"
// @Success 200 {object} stripe.PaymentStatusResponse
// @Router /payments/update [post]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	var req stripe.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.processor.UpdatePayment(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	if resp == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get payment status
// @Tags Payments
// @Produce json
// @Param id path string true "Payment intent ID"
// @Success 200 {object} stripe.PaymentStatusResponse
// @Router /payments/{id}/status [get]
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	resp, err := h.processor.GetPaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Retrieve a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment intent ID"
// @Success 200 {object} stripe.PaymentDetailsResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) RetrievePayment(c *gin.Context) {
	resp, err := h.processor.RetrievePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Authorize a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment intent ID"
// @Success 200 {object} stripe.PaymentStatusResponse
// @Router /payments/{id}/authorize [post]
func (h *PaymentHandler) AuthorizePayment(c *gin.Context) {
	resp, err := h.processor.AuthorizePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a payment session
// @Tags Payments
// @Produce json
// @Param id path string true "Payment intent ID"
// @Success 200 {object} stripe.PaymentStatusResponse
// @Router /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	resp, err := h.processor.DeletePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Capture an authorised payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment intent ID"
// @Success 200 {object} stripe.PaymentStatusResponse
// @Router /payments/{id}/capture [post]
func (h *PaymentHandler) CapturePayment(c *gin.Context) {
	resp, err := h.processor.CapturePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment intent ID"
// @Success 200 {object} stripe.PaymentStatusResponse
// @Router /payments/{id}/cancel [post]
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	resp, err := h.processor.CancelPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Refund a payment
// @Tags Payments
// @Accept json
// @Param request body stripe.RefundPaymentRequest true "Refund request"
// @Success 204
// @Router /payments/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var req stripe.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.processor.RefundPayment(c.Request.Context(), &req); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
