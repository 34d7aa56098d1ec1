package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"omitempty,oneof=VOTER PARTICIPANT_INDIVIDUAL PARTICIPANT_TEAM"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type roleRequest struct {
	Role Role `json:"role" binding:"required"`
}

type authResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Register handles POST /auth/register.
func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}

	u, tok, err := RegisterUser(c.Request.Context(), RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: u, Token: tok})
}

// Login handles POST /auth/login.
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}

	ctx := c.Request.Context()
	if !loginLimiter.Allow(ctx, c.ClientIP()) {
		apperr.Respond(c, apperr.RateLimited("too many login attempts, try again later"))
		return
	}

	u, tok, err := Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	loginLimiter.Reset(ctx, c.ClientIP())
	c.JSON(http.StatusOK, authResponse{User: u, Token: tok})
}

// Me handles GET /auth/me.
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": Current(c)})
}

// GetProfile handles GET /users/:id.
func GetProfile(c *gin.Context) {
	u, err := GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// UpdateProfileHandler handles PUT /users/:id.
func UpdateProfileHandler(c *gin.Context) {
	var req ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	u, err := UpdateProfile(c.Request.Context(), Current(c), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpgradeRoleHandler handles PUT /users/:id/role.
func UpgradeRoleHandler(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	u, err := UpgradeRole(c.Request.Context(), Current(c), c.Param("id"), req.Role)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated", "user": u})
}

// GetPoints handles GET /users/:id/points.
func GetPoints(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	summary, err := Points(c.Request.Context(), c.Param("id"), year)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
