package service

import (
	"context"
	"errors"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

var tagQuerySpec = QuerySpec{
	Table:        "tags",
	SearchFields: []string{"name", "slug"},
	OrderFields: map[string]string{
		"name": "name",
		"slug": "slug",
	},
	DefaultOrder: []string{"name"},
}

// TagInput 标签入参，Slug 为空时由名称派生
type TagInput struct {
	Name string
	Slug string
}

// TagService wraps tag related operations.
type TagService struct {
	db *gorm.DB
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// List returns tags ordered by name unless params say otherwise.
func (s *TagService) List(ctx context.Context, params ListParams) (ListResult[TagView], error) {
	result, err := list[db.Tag](s.db.WithContext(ctx), tagQuerySpec, params, nil)
	if err != nil {
		return ListResult[TagView]{}, err
	}
	return ListResult[TagView]{
		Items:      toTagViews(result.Items),
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Get returns a single tag.
func (s *TagService) Get(ctx context.Context, id uint) (*TagView, error) {
	tag, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &TagView{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}, nil
}

// Create inserts a new tag with a unique slug.
func (s *TagService) Create(ctx context.Context, input TagInput) (*TagView, error) {
	tx := s.db.WithContext(ctx)
	name, err := requireText("name", input.Name, 100)
	if err != nil {
		return nil, err
	}
	slugValue, err := assignSlug(tx, &db.Tag{}, input.Slug, name, tagSlugMaxLen, nil)
	if err != nil {
		return nil, err
	}

	tag := db.Tag{Name: name, Slug: slugValue}
	if err := tx.Create(&tag).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &TagView{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}, nil
}

// Update renames a tag. The slug only changes when it was empty.
func (s *TagService) Update(ctx context.Context, id uint, input TagInput) (*TagView, error) {
	tx := s.db.WithContext(ctx)
	tag, err := s.find(tx, id)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", input.Name, 100)
	if err != nil {
		return nil, err
	}
	slugValue, err := refreshSlug(tx, &db.Tag{}, tag.Slug, input.Slug, name, tagSlugMaxLen, tag.ID)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	tag.Slug = slugValue
	if err := tx.Save(tag).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &TagView{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}, nil
}

// Delete removes a tag and detaches it from contents and news.
func (s *TagService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := s.find(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM content_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM news_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(tag).Error
	})
}

func (s *TagService) find(tx *gorm.DB, id uint) (*db.Tag, error) {
	var tag db.Tag
	if err := tx.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}
