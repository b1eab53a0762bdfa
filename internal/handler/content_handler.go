package handler

import (
	"net/http"

	"github.com/collegecms/internal/service"
	"github.com/gin-gonic/gin"
)

type contentImagePayload struct {
	Image string `json:"image" binding:"required"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type contentTextPayload struct {
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type contentPayload struct {
	Title       string                `json:"title" binding:"required,max=200"`
	Description string                `json:"description"`
	Slug        string                `json:"slug" binding:"max=200"`
	Page        *string               `json:"page"`
	Role        string                `json:"role" binding:"omitempty,oneof=attachment standalone carousel"`
	IsPage      *bool                 `json:"isPage"`
	IsCarousel  *bool                 `json:"isCarousel"`
	TagIDs      []uint                `json:"tag_ids"`
	Images      []contentImagePayload `json:"images" binding:"dive"`
	Texts       []contentTextPayload  `json:"texts" binding:"dive"`
}

func (p contentPayload) toInput() service.ContentInput {
	input := service.ContentInput{
		Title:       p.Title,
		Description: p.Description,
		Slug:        p.Slug,
		PageID:      p.Page,
		Role:        p.Role,
		IsPage:      p.IsPage,
		IsCarousel:  p.IsCarousel,
		TagIDs:      p.TagIDs,
	}
	if p.Images != nil {
		input.Images = make([]service.ContentImageInput, 0, len(p.Images))
		for _, image := range p.Images {
			input.Images = append(input.Images, service.ContentImageInput{Image: image.Image, Text: image.Text, Order: image.Order})
		}
	}
	if p.Texts != nil {
		input.Texts = make([]service.ContentTextInput, 0, len(p.Texts))
		for _, text := range p.Texts {
			input.Texts = append(input.Texts, service.ContentTextInput{Text: text.Text, Order: text.Order})
		}
	}
	return input
}

// ListContents 内容列表，只带代表图
func (a *API) ListContents(c *gin.Context) {
	result, err := a.contents.List(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

// ListCarousel 轮播内容，返回完整聚合
func (a *API) ListCarousel(c *gin.Context) {
	result, err := a.contents.Carousel(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

// GetContent 内容详情
func (a *API) GetContent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	view, err := a.contents.Assemble(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateContent 创建内容及其图片、文本
func (a *API) CreateContent(c *gin.Context) {
	var payload contentPayload
	if !bindJSON(c, &payload) {
		return
	}
	view, err := a.contents.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateContent 更新内容
func (a *API) UpdateContent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var payload contentPayload
	if !bindJSON(c, &payload) {
		return
	}
	view, err := a.contents.Update(c.Request.Context(), id, payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteContent 删除内容
func (a *API) DeleteContent(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := a.contents.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
