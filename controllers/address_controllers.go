package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/store"
	"github.com/danuarts/takeout-app/utils"
)

type AddressController struct {
	Store *store.GormStore
}

func NewAddressController(s *store.GormStore) *AddressController {
	return &AddressController{Store: s}
}

// CreateAddress -> save a delivery address for the caller
func (ac *AddressController) CreateAddress(c *gin.Context) {
	type reqBody struct {
		Consignee string `json:"consignee" binding:"required"`
		Phone     string `json:"phone" binding:"required"`
		Detail    string `json:"detail" binding:"required"`
		IsDefault bool   `json:"is_default"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	address := models.AddressBook{
		UserID:    currentUserID(c),
		Consignee: body.Consignee,
		Phone:     body.Phone,
		Detail:    body.Detail,
		IsDefault: body.IsDefault,
	}
	if err := ac.Store.CreateAddressBook(&address); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Address created", address)
}

// ListAddresses -> the caller's address book
func (ac *AddressController) ListAddresses(c *gin.Context) {
	addresses, err := ac.Store.ListAddressBooks(currentUserID(c))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Address book", addresses)
}
