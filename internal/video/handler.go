package video

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/user"
)

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("%s must be an integer", name)
	}
	return v, nil
}

// GetVideos handles GET /videos.
func GetVideos(c *gin.Context) {
	f := ListFilter{
		Category: category.Category(c.Query("category")),
		Search:   c.Query("search"),
		AuthorID: c.Query("authorId"),
	}
	var err error
	for name, dst := range map[string]*int{"round": &f.Round, "year": &f.Year, "page": &f.Page, "limit": &f.Limit} {
		if *dst, err = queryInt(c, name); err != nil {
			apperr.Respond(c, err)
			return
		}
	}

	page, err := List(c.Request.Context(), f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetVideo handles GET /videos/:id.
func GetVideo(c *gin.Context) {
	v, err := Get(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, v.View())
}

// CreateVideo handles POST /videos.
func CreateVideo(c *gin.Context) {
	var req SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	v, err := Submit(c.Request.Context(), user.Current(c), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, v.View())
}

// UpdateVideo handles PUT /videos/:id.
func UpdateVideo(c *gin.Context) {
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Invalid("invalid request: %v", err))
		return
	}
	v, err := Update(c.Request.Context(), user.Current(c), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, v.View())
}

// DeleteVideo handles DELETE /videos/:id.
func DeleteVideo(c *gin.Context) {
	if err := Delete(c.Request.Context(), user.Current(c), c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}
