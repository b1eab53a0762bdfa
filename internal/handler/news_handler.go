package handler

import (
	"net/http"
	"time"

	"github.com/collegecms/internal/service"
	"github.com/gin-gonic/gin"
)

type newsPayload struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Slug        string     `json:"slug" binding:"max=200"`
	Body        string     `json:"body"`
	Image       string     `json:"image"`
	Category    *uint      `json:"category"`
	TagIDs      []uint     `json:"tag_ids"`
	PublishedAt *time.Time `json:"published_at"`
}

func (p newsPayload) toInput() service.NewsInput {
	return service.NewsInput{
		Title:       p.Title,
		Slug:        p.Slug,
		Body:        p.Body,
		Image:       p.Image,
		CategoryID:  p.Category,
		TagIDs:      p.TagIDs,
		PublishedAt: p.PublishedAt,
	}
}

type categoryPayload struct {
	Name   string `json:"name" binding:"required,max=100"`
	Slug   string `json:"slug" binding:"max=100"`
	Parent *uint  `json:"parent"`
}

// withAbsoluteURLs 补全新闻的访问地址与图片地址
func (a *API) withAbsoluteURLs(c *gin.Context, news *service.NewsView) {
	news.URL = a.absoluteURL(c, "/api/news/"+news.Slug+"/")
	if news.Image != "" {
		news.ImageURL = a.absoluteURL(c, news.ImageURL)
	}
}

// ListNews 新闻列表，默认按发布时间倒序
func (a *API) ListNews(c *gin.Context) {
	result, err := a.news.List(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range result.Items {
		a.withAbsoluteURLs(c, &result.Items[i])
	}
	c.JSON(http.StatusOK, listResponse(result))
}

func (a *API) GetNews(c *gin.Context) {
	news, err := a.news.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	a.withAbsoluteURLs(c, news)
	c.JSON(http.StatusOK, news)
}

func (a *API) CreateNews(c *gin.Context) {
	var payload newsPayload
	if !bindJSON(c, &payload) {
		return
	}
	news, err := a.news.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	a.withAbsoluteURLs(c, news)
	c.JSON(http.StatusCreated, news)
}

func (a *API) UpdateNews(c *gin.Context) {
	var payload newsPayload
	if !bindJSON(c, &payload) {
		return
	}
	news, err := a.news.Update(c.Request.Context(), c.Param("slug"), payload.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	a.withAbsoluteURLs(c, news)
	c.JSON(http.StatusOK, news)
}

func (a *API) DeleteNews(c *gin.Context) {
	if err := a.news.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListNewsCategories 新闻分类列表
func (a *API) ListNewsCategories(c *gin.Context) {
	result, err := a.news.ListCategories(c.Request.Context(), listParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(result))
}

func (a *API) GetNewsCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	category, err := a.news.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (a *API) CreateNewsCategory(c *gin.Context) {
	var payload categoryPayload
	if !bindJSON(c, &payload) {
		return
	}
	category, err := a.news.CreateCategory(c.Request.Context(), service.CategoryInput{Name: payload.Name, Slug: payload.Slug, ParentID: payload.Parent})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (a *API) UpdateNewsCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var payload categoryPayload
	if !bindJSON(c, &payload) {
		return
	}
	category, err := a.news.UpdateCategory(c.Request.Context(), id, service.CategoryInput{Name: payload.Name, Slug: payload.Slug, ParentID: payload.Parent})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteNewsCategory 删除分类，新闻与子分类的引用置空
func (a *API) DeleteNewsCategory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := a.news.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
