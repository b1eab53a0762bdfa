package handler

import (
	"net/http"

	"github.com/collegecms/internal/service"
	"github.com/gin-gonic/gin"
)

type tagPayload struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"max=100"`
}

// ListTags 获取标签列表
func (a *API) ListTags(c *gin.Context) {
	result, err := a.tags.List(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

// GetTag 获取单个标签
func (a *API) GetTag(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	tag, err := a.tags.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag 创建新标签
func (a *API) CreateTag(c *gin.Context) {
	var req tagPayload
	if !bindJSON(c, &req) {
		return
	}
	tag, err := a.tags.Create(c.Request.Context(), service.TagInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag 更新标签，已有 slug 保持不变
func (a *API) UpdateTag(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req tagPayload
	if !bindJSON(c, &req) {
		return
	}
	tag, err := a.tags.Update(c.Request.Context(), id, service.TagInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag 删除标签，内容与新闻上的关联一并解除
func (a *API) DeleteTag(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := a.tags.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
