package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/services"
	"github.com/danuarts/takeout-app/utils"
)

// AdminOrderController exposes the merchant/admin side of the order
// lifecycle.
type AdminOrderController struct {
	Svc *services.OrderService
}

func NewAdminOrderController(svc *services.OrderService) *AdminOrderController {
	return &AdminOrderController{Svc: svc}
}

// ConfirmOrder -> merchant accepts an order waiting for confirmation
func (ac *AdminOrderController) ConfirmOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	if err := ac.Svc.Confirm(orderID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order confirmed", gin.H{"order_id": orderID})
}

// RejectOrder -> merchant declines with a reason
func (ac *AdminOrderController) RejectOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")

	type reqBody struct {
		Reason string `json:"reason" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.Svc.Reject(orderID, currentUserID(c), body.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order rejected", gin.H{"order_id": orderID})
}

// CancelOrder -> admin override, no status guard
func (ac *AdminOrderController) CancelOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")

	type reqBody struct {
		Reason string `json:"reason" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.Svc.AdminCancel(orderID, currentUserID(c), body.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", gin.H{"order_id": orderID})
}

// DispatchOrder -> send a confirmed order out for delivery
func (ac *AdminOrderController) DispatchOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	if err := ac.Svc.Dispatch(orderID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order dispatched", gin.H{"order_id": orderID})
}

// CompleteOrder -> mark a dispatched order as delivered
func (ac *AdminOrderController) CompleteOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	if err := ac.Svc.Complete(orderID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order completed", gin.H{"order_id": orderID})
}

// GetOrder -> any order with its detail lines, unscoped
func (ac *AdminOrderController) GetOrder(c *gin.Context) {
	orderID := parseID(c, "order_id")
	order, err := ac.Svc.GetOrderDetail(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrderStatistics -> dashboard counts per waiting status
func (ac *AdminOrderController) GetOrderStatistics(c *gin.Context) {
	stats, err := ac.Svc.Statistics()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order statistics", stats)
}

// SearchOrders -> conditional paging over all orders
func (ac *AdminOrderController) SearchOrders(c *gin.Context) {
	filter := models.OrderPageFilter{
		Number: c.Query("number"),
		Phone:  c.Query("phone"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if raw := c.Query("status"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			st := models.OrderStatus(n)
			filter.Status = &st
		}
	}
	if raw := c.Query("begin_time"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.BeginTime = &t
		}
	}
	if raw := c.Query("end_time"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.EndTime = &t
		}
	}

	records, total, err := ac.Svc.PageQuery(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order search", utils.PageResult{Total: total, Records: records})
}
