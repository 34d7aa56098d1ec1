package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/user"
)

type checkoutRequest struct {
	Categories []string `json:"categories" binding:"required,min=1"`
}

// CreateCheckoutSession handles POST /payments/create-checkout-session.
func CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	res, err := CreateCheckout(c.Request.Context(), user.Current(c), req.Categories)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetStatus handles GET /payments/:id/status.
func GetStatus(c *gin.Context) {
	p, err := GetForOwner(c.Request.Context(), user.Current(c).ID, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         p.ID,
		"status":     p.Status,
		"amount":     p.Amount(),
		"currency":   p.Currency,
		"categories": p.Categories,
		"videoId":    p.VideoID,
	})
}

// Complete handles POST /payments/:id/complete.
func Complete(c *gin.Context) {
	p, err := CompleteMock(c.Request.Context(), user.Current(c).ID, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Webhook handles POST /payments/webhook.
func Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		apperr.Respond(c, apperr.Invalid("cannot read body"))
		return
	}
	err = HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, ErrWebhookUnsupported) {
		c.JSON(http.StatusOK, gin.H{"received": true, "mock": true})
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
