package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/store"
	"github.com/danuarts/takeout-app/utils"
)

type CartController struct {
	Store *store.GormStore
}

func NewCartController(s *store.GormStore) *CartController {
	return &CartController{Store: s}
}

// AddEntry -> put one item into the caller's cart
func (cc *CartController) AddEntry(c *gin.Context) {
	type reqBody struct {
		Name   string  `json:"name" binding:"required"`
		Flavor string  `json:"flavor"`
		Number int     `json:"number" binding:"required,min=1"`
		Amount float64 `json:"amount" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry := models.ShoppingCart{
		UserID: currentUserID(c),
		Name:   body.Name,
		Flavor: body.Flavor,
		Number: body.Number,
		Amount: body.Amount,
	}
	if err := cc.Store.AddCartEntry(&entry); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Cart entry added", entry)
}

// ListEntries -> the caller's current cart
func (cc *CartController) ListEntries(c *gin.Context) {
	cart, err := cc.Store.ListCart(currentUserID(c))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shopping cart", cart)
}

// Clean -> empty the caller's cart
func (cc *CartController) Clean(c *gin.Context) {
	if err := cc.Store.ClearCart(currentUserID(c)); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleaned", nil)
}
