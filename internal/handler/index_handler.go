package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 根路由列出的资源入口
var indexEndpoints = []string{
	"pages",
	"page-navigation",
	"contents",
	"carousel",
	"tags",
	"content-images",
	"content-texts",
	"videos",
	"news",
	"news-categories",
}

// Index 列出各资源的访问地址
func (a *API) Index(c *gin.Context) {
	endpoints := make(gin.H, len(indexEndpoints))
	for _, name := range indexEndpoints {
		endpoints[name] = a.absoluteURL(c, "/api/"+name+"/")
	}
	c.JSON(http.StatusOK, endpoints)
}
