package service

import (
	"context"
	"errors"
	"strings"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

var videoQuerySpec = QuerySpec{
	Table:        "video_urls",
	SearchFields: []string{"title"},
	OrderFields: map[string]string{
		"title":      "title",
		"created_at": "created_at",
	},
	DefaultOrder: []string{"-created_at"},
}

// VideoInput 视频入参，URL 与 File 至少提供一个
type VideoInput struct {
	Title string
	URL   string
	File  string
}

// VideoService exposes the video catalogue.
type VideoService struct {
	db    *gorm.DB
	media MediaResolver
}

// NewVideoService creates a VideoService instance.
func NewVideoService(gdb *gorm.DB, media MediaResolver) *VideoService {
	return &VideoService{db: gdb, media: media}
}

// List returns videos matching params, newest first by default.
func (s *VideoService) List(ctx context.Context, params ListParams) (ListResult[VideoView], error) {
	result, err := list[db.VideoURL](s.db.WithContext(ctx), videoQuerySpec, params, nil)
	if err != nil {
		return ListResult[VideoView]{}, err
	}
	views := make([]VideoView, 0, len(result.Items))
	for _, video := range result.Items {
		views = append(views, s.view(video))
	}
	return ListResult[VideoView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Get returns a single video.
func (s *VideoService) Get(ctx context.Context, id uint) (*VideoView, error) {
	var video db.VideoURL
	if err := s.db.WithContext(ctx).First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	view := s.view(video)
	return &view, nil
}

// Create registers a video. The HTTP surface is read-only; seeding and
// scripts use this.
func (s *VideoService) Create(ctx context.Context, input VideoInput) (*VideoView, error) {
	title, err := requireText("title", input.Title, 200)
	if err != nil {
		return nil, err
	}
	video := db.VideoURL{
		Title: title,
		URL:   strings.TrimSpace(input.URL),
		File:  strings.TrimSpace(input.File),
	}
	if video.Source() == "" {
		return nil, ErrVideoSource
	}
	if err := s.db.WithContext(ctx).Create(&video).Error; err != nil {
		return nil, err
	}
	view := s.view(video)
	return &view, nil
}

func (s *VideoService) view(video db.VideoURL) VideoView {
	view := toVideoView(video)
	if strings.TrimSpace(video.File) != "" {
		view.Source = s.media.url(video.File)
	}
	return view
}
