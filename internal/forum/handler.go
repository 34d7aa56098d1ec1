package forum

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/user"
)

// GetTopics handles GET /forum/topics.
func GetTopics(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := ListTopics(c.Request.Context(), Category(c.Query("category")), page, limit)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetTopicByID handles GET /forum/topics/:id.
func GetTopicByID(c *gin.Context) {
	t, err := GetTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": t})
}

// PostTopic handles POST /forum/topics.
func PostTopic(c *gin.Context) {
	var req TopicInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	t, err := CreateTopic(c.Request.Context(), user.Current(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"topic": t})
}

type replyRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostReply handles POST /forum/topics/:id/replies.
func PostReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	r, err := AddReply(c.Request.Context(), user.Current(c), c.Param("id"), req.Content)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reply": r})
}
