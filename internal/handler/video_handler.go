package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListVideos 视频列表，只读
func (a *API) ListVideos(c *gin.Context) {
	result, err := a.videos.List(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

func (a *API) GetVideo(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	video, err := a.videos.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
