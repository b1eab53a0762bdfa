package service

import (
	"context"
	"log"
	"strings"

	"github.com/collegecms/internal/db"
	"gorm.io/gorm"
)

// MaxNavigationDepth 限制导航树的递归深度，超出部分被截断。
const MaxNavigationDepth = 32

var navigationQuerySpec = QuerySpec{
	Table: "pages",
	OrderFields: map[string]string{
		"title":      "title",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
	DefaultOrder: []string{"title"},
}

// NavigationFilter selects navigation roots. Ordering applies to siblings
// at every level.
type NavigationFilter struct {
	Template string
	Search   string
	Ordering string
}

// NavigationService builds the published page tree.
type NavigationService struct {
	db *gorm.DB
}

// NewNavigationService creates a NavigationService instance.
func NewNavigationService(gdb *gorm.DB) *NavigationService {
	return &NavigationService{db: gdb}
}

// Build returns one node per published top-level page matching filter,
// each carrying its published descendants. An unpublished page hides its
// whole subtree.
func (s *NavigationService) Build(ctx context.Context, filter NavigationFilter) ([]NavigationNode, error) {
	arena, err := s.loadPublished(ctx, filter.Ordering)
	if err != nil {
		return nil, err
	}

	template := strings.TrimSpace(filter.Template)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	nodes := make([]NavigationNode, 0)
	for idx, page := range arena.pages {
		if page.ParentID != nil {
			continue
		}
		if template != "" && page.Template != template {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(page.Title), search) {
			continue
		}
		nodes = append(nodes, arena.node(idx, 1))
	}
	return nodes, nil
}

// Children returns the published subtree below pageID.
func (s *NavigationService) Children(ctx context.Context, pageID string) ([]NavigationNode, error) {
	arena, err := s.loadPublished(ctx, "")
	if err != nil {
		return nil, err
	}
	return childrenOf(arena, pageID), nil
}

func childrenOf(arena *pageArena, pageID string) []NavigationNode {
	nodes := make([]NavigationNode, 0)
	idx, ok := arena.index[pageID]
	if !ok {
		return nodes
	}
	for _, child := range arena.children[idx] {
		nodes = append(nodes, arena.node(child, 2))
	}
	return nodes
}

func (s *NavigationService) loadPublished(ctx context.Context, ordering string) (*pageArena, error) {
	var pages []db.Page
	query := s.db.WithContext(ctx).
		Model(&db.Page{}).
		Select("id", "title", "slug", "template", "parent_id", "is_published").
		Where("is_published = ?", true)
	if err := navigationQuerySpec.order(query, ordering).Find(&pages).Error; err != nil {
		return nil, err
	}
	return newPageArena(pages), nil
}

// pageArena 以切片存放页面，父子关系用下标表示。
// pages 已按兄弟排序规则排好，children 中的下标顺序随之保持。
type pageArena struct {
	pages    []db.Page
	index    map[string]int
	children [][]int
}

func newPageArena(pages []db.Page) *pageArena {
	arena := &pageArena{
		pages:    pages,
		index:    make(map[string]int, len(pages)),
		children: make([][]int, len(pages)),
	}
	for i, page := range pages {
		arena.index[page.ID] = i
	}
	for i, page := range pages {
		if page.ParentID == nil {
			continue
		}
		if parent, ok := arena.index[*page.ParentID]; ok && parent != i {
			arena.children[parent] = append(arena.children[parent], i)
		}
	}
	return arena
}

func (a *pageArena) node(idx, depth int) NavigationNode {
	page := a.pages[idx]
	node := NavigationNode{
		ID:       page.ID,
		Title:    page.Title,
		Slug:     page.Slug,
		Children: make([]NavigationNode, 0, len(a.children[idx])),
	}

	if depth >= MaxNavigationDepth {
		if len(a.children[idx]) > 0 {
			log.Printf("[navigation] depth limit %d reached at page %s, children dropped", MaxNavigationDepth, page.ID)
		}
		return node
	}

	for _, child := range a.children[idx] {
		node.Children = append(node.Children, a.node(child, depth+1))
	}
	return node
}
