package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

var contentImageQuerySpec = QuerySpec{
	Table: "content_images",
	Filters: map[string]FilterField{
		"content": {Column: "content_id", Uint: true},
	},
	SearchFields: []string{"text"},
	OrderFields: map[string]string{
		"order":   "sort_order",
		"content": "content_id",
	},
	DefaultOrder: []string{"order"},
}

var contentTextQuerySpec = QuerySpec{
	Table: "content_texts",
	Filters: map[string]FilterField{
		"content": {Column: "content_id", Uint: true},
	},
	SearchFields: []string{"text"},
	OrderFields: map[string]string{
		"order":   "sort_order",
		"content": "content_id",
	},
	DefaultOrder: []string{"order"},
}

// ContentBlockInput 单独维护图片或文本块时的入参，Image 对文本块无效。
type ContentBlockInput struct {
	ContentID uint
	Image     string
	Text      string
	Order     int
}

// ContentBlockService manages content images and texts individually.
type ContentBlockService struct {
	db    *gorm.DB
	media MediaResolver
}

// NewContentBlockService creates a ContentBlockService instance.
func NewContentBlockService(gdb *gorm.DB, media MediaResolver) *ContentBlockService {
	return &ContentBlockService{db: gdb, media: media}
}

// ContentImageView 带所属内容 id 的图片块
type ContentImageView struct {
	ImageView
	Content   uint      `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentTextView 带所属内容 id 的文本块
type ContentTextView struct {
	TextView
	Content   uint      `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *ContentBlockService) imageView(image db.ContentImage) ContentImageView {
	return ContentImageView{
		ImageView: ImageView{
			ID:       image.ID,
			Image:    image.Image,
			ImageURL: s.media.url(image.Image),
			Text:     image.Text,
			Order:    image.SortOrder,
		},
		Content:   image.ContentID,
		CreatedAt: image.CreatedAt,
	}
}

func textView(text db.ContentText) ContentTextView {
	return ContentTextView{
		TextView:  TextView{ID: text.ID, Text: text.Text, Order: text.SortOrder},
		Content:   text.ContentID,
		CreatedAt: text.CreatedAt,
	}
}

// ListImages returns content images matching params.
func (s *ContentBlockService) ListImages(ctx context.Context, params ListParams) (ListResult[ContentImageView], error) {
	result, err := list[db.ContentImage](s.db.WithContext(ctx), contentImageQuerySpec, params, nil)
	if err != nil {
		return ListResult[ContentImageView]{}, err
	}
	views := make([]ContentImageView, 0, len(result.Items))
	for _, image := range result.Items {
		views = append(views, s.imageView(image))
	}
	return ListResult[ContentImageView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// GetImage returns a single content image.
func (s *ContentBlockService) GetImage(ctx context.Context, id uint) (*ContentImageView, error) {
	var image db.ContentImage
	if err := s.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentImageNotFound
		}
		return nil, err
	}
	view := s.imageView(image)
	return &view, nil
}

// CreateImage attaches a new image to a content.
func (s *ContentBlockService) CreateImage(ctx context.Context, input ContentBlockInput) (*ContentImageView, error) {
	tx := s.db.WithContext(ctx)
	if err := ensureContentExists(tx, input.ContentID); err != nil {
		return nil, err
	}
	image := strings.TrimSpace(input.Image)
	if image == "" {
		return nil, invalidField("image", "image is required")
	}

	record := db.ContentImage{
		ContentID: input.ContentID,
		Image:     image,
		Text:      strings.TrimSpace(input.Text),
		SortOrder: input.Order,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	view := s.imageView(record)
	return &view, nil
}

// UpdateImage replaces the fields of a content image.
func (s *ContentBlockService) UpdateImage(ctx context.Context, id uint, input ContentBlockInput) (*ContentImageView, error) {
	tx := s.db.WithContext(ctx)
	var record db.ContentImage
	if err := tx.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentImageNotFound
		}
		return nil, err
	}
	if err := ensureContentExists(tx, input.ContentID); err != nil {
		return nil, err
	}
	image := strings.TrimSpace(input.Image)
	if image == "" {
		return nil, invalidField("image", "image is required")
	}

	record.ContentID = input.ContentID
	record.Image = image
	record.Text = strings.TrimSpace(input.Text)
	record.SortOrder = input.Order
	if err := tx.Save(&record).Error; err != nil {
		return nil, err
	}
	view := s.imageView(record)
	return &view, nil
}

// DeleteImage removes a content image.
func (s *ContentBlockService) DeleteImage(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.ContentImage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentImageNotFound
	}
	return nil
}

// MediaInUse 判断媒体引用是否仍被任一图片或视频记录使用
func (s *ContentBlockService) MediaInUse(ctx context.Context, ref string) (bool, error) {
	tx := s.db.WithContext(ctx)
	checks := []struct {
		model  any
		column string
	}{
		{&db.ContentImage{}, "image"},
		{&db.PageImage{}, "image"},
		{&db.News{}, "image"},
		{&db.VideoURL{}, "file"},
	}
	for _, check := range checks {
		var count int64
		if err := tx.Model(check.model).Where(check.column+" = ?", ref).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// ListTexts returns content texts matching params.
func (s *ContentBlockService) ListTexts(ctx context.Context, params ListParams) (ListResult[ContentTextView], error) {
	result, err := list[db.ContentText](s.db.WithContext(ctx), contentTextQuerySpec, params, nil)
	if err != nil {
		return ListResult[ContentTextView]{}, err
	}
	views := make([]ContentTextView, 0, len(result.Items))
	for _, text := range result.Items {
		views = append(views, textView(text))
	}
	return ListResult[ContentTextView]{
		Items:      views,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// GetText returns a single content text.
func (s *ContentBlockService) GetText(ctx context.Context, id uint) (*ContentTextView, error) {
	var text db.ContentText
	if err := s.db.WithContext(ctx).First(&text, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentTextNotFound
		}
		return nil, err
	}
	view := textView(text)
	return &view, nil
}

// CreateText attaches a sanitised text block to a content.
func (s *ContentBlockService) CreateText(ctx context.Context, input ContentBlockInput) (*ContentTextView, error) {
	tx := s.db.WithContext(ctx)
	if err := ensureContentExists(tx, input.ContentID); err != nil {
		return nil, err
	}

	record := db.ContentText{
		ContentID: input.ContentID,
		Text:      sanitizeRichText(input.Text),
		SortOrder: input.Order,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}
	view := textView(record)
	return &view, nil
}

// UpdateText replaces the fields of a content text.
func (s *ContentBlockService) UpdateText(ctx context.Context, id uint, input ContentBlockInput) (*ContentTextView, error) {
	tx := s.db.WithContext(ctx)
	var record db.ContentText
	if err := tx.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentTextNotFound
		}
		return nil, err
	}
	if err := ensureContentExists(tx, input.ContentID); err != nil {
		return nil, err
	}

	record.ContentID = input.ContentID
	record.Text = sanitizeRichText(input.Text)
	record.SortOrder = input.Order
	if err := tx.Save(&record).Error; err != nil {
		return nil, err
	}
	view := textView(record)
	return &view, nil
}

// DeleteText removes a content text.
func (s *ContentBlockService) DeleteText(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.ContentText{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentTextNotFound
	}
	return nil
}

func ensureContentExists(tx *gorm.DB, contentID uint) error {
	if contentID == 0 {
		return invalidField("content", "content is required")
	}
	var count int64
	if err := tx.Model(&db.Content{}).Where("id = ?", contentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField("content", "content does not exist")
	}
	return nil
}
