package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/collegecms/internal/service"
	"github.com/gin-gonic/gin"
)

// optionalString 区分字段缺失、显式 null 与具体值
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

type pageImagePayload struct {
	Image string `json:"image" binding:"required"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type pagePayload struct {
	Title       string             `json:"title" binding:"required,max=200"`
	Subtitle    string             `json:"subtitle" binding:"max=200"`
	Slug        string             `json:"slug" binding:"max=200"`
	Template    string             `json:"template"`
	IsPublished *bool              `json:"is_published"`
	Parent      optionalString     `json:"parent"`
	Images      []pageImagePayload `json:"images" binding:"dive"`
	Contents    []contentPayload   `json:"contents" binding:"dive"`
	Children    []pagePayload      `json:"children" binding:"dive"`
}

func (p pagePayload) toInput() service.PageInput {
	input := service.PageInput{
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Slug:        p.Slug,
		Template:    p.Template,
		IsPublished: p.IsPublished,
		ParentID:    p.Parent.Value,
		ParentSet:   p.Parent.Set,
	}
	if p.Images != nil {
		input.Images = make([]service.PageImageInput, 0, len(p.Images))
		for _, image := range p.Images {
			input.Images = append(input.Images, service.PageImageInput{Image: image.Image, Text: image.Text, Order: image.Order})
		}
	}
	for _, content := range p.Contents {
		input.Contents = append(input.Contents, content.toInput())
	}
	for _, child := range p.Children {
		input.Children = append(input.Children, child.toInput())
	}
	return input
}

type bulkPublishPayload struct {
	IDs         []string `json:"ids" binding:"required,min=1"`
	IsPublished *bool    `json:"is_published" binding:"required"`
}

// ListPages 页面列表
func (a *API) ListPages(c *gin.Context) {
	result, err := a.pages.List(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

// GetPage 按 slug 获取页面详情，未发布的页面同样可以访问
func (a *API) GetPage(c *gin.Context) {
	detail, err := a.pages.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreatePage 创建页面，可嵌套内容、图片与子页面
func (a *API) CreatePage(c *gin.Context) {
	var payload pagePayload
	if !bindJSON(c, &payload) {
		return
	}

	detail, err := a.pages.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// UpdatePage 更新页面
func (a *API) UpdatePage(c *gin.Context) {
	var payload pagePayload
	if !bindJSON(c, &payload) {
		return
	}

	detail, err := a.pages.Update(c.Request.Context(), c.Param("slug"), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeletePage 删除页面及其整棵子树
func (a *API) DeletePage(c *gin.Context) {
	if err := a.pages.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkPublishPages 批量发布或下线页面
func (a *API) BulkPublishPages(c *gin.Context) {
	var payload bulkPublishPayload
	if !bindJSON(c, &payload) {
		return
	}

	updated, err := a.pages.BulkPublish(c.Request.Context(), payload.IDs, *payload.IsPublished)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated, "is_published": *payload.IsPublished})
}

// GetNavigation 返回已发布页面组成的导航树
func (a *API) GetNavigation(c *gin.Context) {
	nodes, err := a.navigation.Build(c.Request.Context(), service.NavigationFilter{
		Template: c.Query("template"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}
