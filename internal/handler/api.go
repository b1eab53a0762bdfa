package handler

import (
	"strings"

	"github.com/collegecms/internal/service"
	"github.com/collegecms/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	pages       *service.PageService
	navigation  *service.NavigationService
	contents    *service.ContentService
	blocks      *service.ContentBlockService
	tags        *service.TagService
	news        *service.NewsService
	videos      *service.VideoService
	users       *service.UserService
	storage     storage.Storage
	siteBaseURL string
}

// NewAPI constructs a handler set with shared services. Stored media
// references are resolved to URLs through store.
func NewAPI(db *gorm.DB, store storage.Storage, siteBaseURL string) *API {
	media := mediaResolver(store)

	return &API{
		pages:       service.NewPageService(db, media),
		navigation:  service.NewNavigationService(db),
		contents:    service.NewContentService(db, media),
		blocks:      service.NewContentBlockService(db, media),
		tags:        service.NewTagService(db),
		news:        service.NewNewsService(db, media),
		videos:      service.NewVideoService(db, media),
		users:       service.NewUserService(db),
		storage:     store,
		siteBaseURL: strings.TrimRight(siteBaseURL, "/"),
	}
}

// mediaResolver 已是完整地址的引用原样返回，其余交给存储后端拼接。
func mediaResolver(store storage.Storage) service.MediaResolver {
	return func(ref string) string {
		if isAbsoluteURL(ref) {
			return ref
		}
		if store == nil {
			return "/media/" + strings.TrimLeft(ref, "/")
		}
		return store.URL(strings.TrimLeft(ref, "/"))
	}
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//")
}
