package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/collegecms/internal/service"
	"github.com/gin-gonic/gin"
)

type contentBlockPayload struct {
	Content uint   `json:"content" binding:"required"`
	Image   string `json:"image"`
	Text    string `json:"text"`
	Order   int    `json:"order"`
}

func (p contentBlockPayload) toInput() service.ContentBlockInput {
	return service.ContentBlockInput{ContentID: p.Content, Image: p.Image, Text: p.Text, Order: p.Order}
}

// ListContentImages 图片块列表
func (a *API) ListContentImages(c *gin.Context) {
	result, err := a.blocks.ListImages(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

func (a *API) GetContentImage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	image, err := a.blocks.GetImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, image)
}

func (a *API) CreateContentImage(c *gin.Context) {
	var payload contentBlockPayload
	if !bindJSON(c, &payload) {
		return
	}
	image, err := a.blocks.CreateImage(c.Request.Context(), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, image)
}

func (a *API) UpdateContentImage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var payload contentBlockPayload
	if !bindJSON(c, &payload) {
		return
	}
	image, err := a.blocks.UpdateImage(c.Request.Context(), id, payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, image)
}

func (a *API) DeleteContentImage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	image, err := a.blocks.GetImage(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := a.blocks.DeleteImage(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	a.releaseMedia(ctx, image.Image)
	c.Status(http.StatusNoContent)
}

// releaseMedia 删除不再被引用的已上传文件，外部地址不处理
func (a *API) releaseMedia(ctx context.Context, ref string) {
	if a.storage == nil || ref == "" || isAbsoluteURL(ref) {
		return
	}
	inUse, err := a.blocks.MediaInUse(ctx, ref)
	if err != nil {
		log.Printf("[media] check %s failed: %v", ref, err)
		return
	}
	if inUse {
		return
	}
	if err := a.storage.Delete(ctx, strings.TrimLeft(ref, "/")); err != nil {
		log.Printf("[media] delete %s failed: %v", ref, err)
	}
}

// ListContentTexts 文本块列表
func (a *API) ListContentTexts(c *gin.Context) {
	result, err := a.blocks.ListTexts(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

func (a *API) GetContentText(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	text, err := a.blocks.GetText(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, text)
}

func (a *API) CreateContentText(c *gin.Context) {
	var payload contentBlockPayload
	if !bindJSON(c, &payload) {
		return
	}
	text, err := a.blocks.CreateText(c.Request.Context(), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, text)
}

func (a *API) UpdateContentText(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var payload contentBlockPayload
	if !bindJSON(c, &payload) {
		return
	}
	text, err := a.blocks.UpdateText(c.Request.Context(), id, payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, text)
}

func (a *API) DeleteContentText(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := a.blocks.DeleteText(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
