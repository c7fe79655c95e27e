package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/utils"
)

// respondServiceError maps lifecycle errors onto HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, models.ErrAddressBookEmpty),
		errors.Is(err, models.ErrCartEmpty):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, models.ErrOrderStatusConflict),
		errors.Is(err, models.ErrOrderAlreadyPaid):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, models.ErrPaymentGateway):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
