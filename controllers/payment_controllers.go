package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danuarts/takeout-app/services"
	"github.com/danuarts/takeout-app/utils"
)

// PaymentController receives the payment provider's callbacks.
type PaymentController struct {
	Svc *services.OrderService
}

func NewPaymentController(svc *services.OrderService) *PaymentController {
	return &PaymentController{Svc: svc}
}

// PaymentCallback -> inbound settlement notification from the gateway.
// The provider retries until it sees success, so the same order number
// may arrive any number of times; every call after the first is a
// no-op.
func (pc *PaymentController) PaymentCallback(c *gin.Context) {
	type reqBody struct {
		OrderNumber string `json:"out_trade_no" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := pc.Svc.ConfirmPayment(body.OrderNumber); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment confirmed", gin.H{"order_number": body.OrderNumber})
}
