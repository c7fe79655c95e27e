package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/store"
	"github.com/danuarts/takeout-app/utils"
)

type UserController struct {
	Store *store.GormStore
}

func NewUserController(s *store.GormStore) *UserController {
	return &UserController{Store: s}
}

// Register -> create a customer account
func (uc *UserController) Register(c *gin.Context) {
	type reqBody struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Phone    string `json:"phone"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Username: body.Username,
		Password: string(hashed),
		Phone:    body.Phone,
		Role:     models.RoleCustomer,
	}
	if err := uc.Store.CreateUser(&user); err != nil {
		utils.RespondError(c, http.StatusConflict, errors.New("username already taken"))
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{"id": user.ID, "username": user.Username})
}

// Login -> verify credentials and issue a token
func (uc *UserController) Login(c *gin.Context) {
	type reqBody struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Store.GetUserByUsername(body.Username)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid username or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid username or password"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login success", gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "username": user.Username, "role": user.Role},
	})
}
