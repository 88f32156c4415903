package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hiking-backend/services"
	"hiking-backend/utils"
)

type registerPayload struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	UserSvc *services.UserService
}

func NewAuthController(svc *services.UserService) *AuthController {
	return &AuthController{UserSvc: svc}
}

func (ctrl *AuthController) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(bindError(err))
		return
	}

	user, err := ctrl.UserSvc.Register(c.Request.Context(), services.RegisterInput{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Account created successfully", user)
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Error(bindError(err))
		return
	}

	result, err := ctrl.UserSvc.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Login successful", result)
}

// Me returns the account behind the bearer token.
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	user, err := ctrl.UserSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Current user", user)
}
