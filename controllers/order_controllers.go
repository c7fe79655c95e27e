package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/services"
	"github.com/danuarts/takeout-app/utils"
)

// OrderController exposes the customer-facing order operations.
type OrderController struct {
	Svc *services.OrderService
}

func NewOrderController(svc *services.OrderService) *OrderController {
	return &OrderController{Svc: svc}
}

// SubmitOrder -> create an order from the caller's shopping cart
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	type reqBody struct {
		AddressBookID uint   `json:"address_book_id" binding:"required"`
		Remark        string `json:"remark"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Svc.Submit(currentUserID(c), body.AddressBookID, body.Remark)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order submitted", gin.H{
		"id":           order.ID,
		"order_number": order.Number,
		"amount":       order.Amount,
		"order_time":   order.OrderTime,
	})
}

// RequestPayment -> ask the gateway for a payable intent
func (oc *OrderController) RequestPayment(c *gin.Context) {
	type reqBody struct {
		OrderNumber string `json:"order_number" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	intent, err := oc.Svc.RequestPayment(c.Request.Context(), body.OrderNumber, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment intent created", intent)
}

// CancelOrder -> customer self-cancel, closed once the merchant confirmed
func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	if err := oc.Svc.Cancel(orderID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", gin.H{"order_id": orderID})
}

// RemindOrder -> prompt the merchant about an order
func (oc *OrderController) RemindOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	if err := oc.Svc.Remind(orderID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reminder sent", gin.H{"order_id": orderID})
}

// RepeatOrder -> copy a past order back into the shopping cart
func (oc *OrderController) RepeatOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	if err := oc.Svc.Repetition(orderID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order copied to cart", gin.H{"order_id": orderID})
}

// GetOrderByID -> one of the caller's orders with its detail lines
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID := parseID(c, "order_id")
	order, err := oc.Svc.GetOrderDetailFor(orderID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetHistoryOrders -> the caller's own orders, paged
func (oc *OrderController) GetHistoryOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	var status *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			st := models.OrderStatus(n)
			status = &st
		}
	}

	orders, total, err := oc.Svc.HistoryOrders(currentUserID(c), page, pageSize, status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order history", utils.PageResult{Total: total, Records: orders})
}

func parseID(c *gin.Context, param string) uint {
	id, _ := strconv.Atoi(c.Param(param))
	return uint(id)
}
