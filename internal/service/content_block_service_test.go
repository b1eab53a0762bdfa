package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestContentBlockServiceImages(t *testing.T) {
	gdb := setupServiceTestDB(t)
	contents := NewContentService(gdb, testMedia)
	svc := NewContentBlockService(gdb, testMedia)
	ctx := context.Background()

	content, err := contents.Create(ctx, ContentInput{Title: "Labs"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	second, err := svc.CreateImage(ctx, ContentBlockInput{ContentID: content.ID, Image: "lab-2.jpg", Text: "Bench", Order: 2})
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	if _, err := svc.CreateImage(ctx, ContentBlockInput{ContentID: content.ID, Image: "lab-1.jpg", Order: 1}); err != nil {
		t.Fatalf("create image: %v", err)
	}
	if _, err := svc.CreateImage(ctx, ContentBlockInput{ContentID: 999, Image: "x.jpg"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown content, got %v", err)
	}

	listed, err := svc.ListImages(ctx, ListParams{Filters: map[string][]string{"content": {strconv.FormatUint(uint64(content.ID), 10)}}})
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	if listed.Total != 2 || listed.Items[0].Image != "lab-1.jpg" {
		t.Fatalf("expected images ordered by order, got %+v", listed.Items)
	}

	searched, err := svc.ListImages(ctx, ListParams{Search: "bench"})
	if err != nil {
		t.Fatalf("search images: %v", err)
	}
	if searched.Total != 1 || searched.Items[0].ID != second.ID {
		t.Fatalf("unexpected search result %+v", searched.Items)
	}

	updated, err := svc.UpdateImage(ctx, second.ID, ContentBlockInput{ContentID: content.ID, Image: "lab-0.jpg", Order: 0})
	if err != nil {
		t.Fatalf("update image: %v", err)
	}
	if updated.ImageURL != "/media/lab-0.jpg" || updated.Order != 0 {
		t.Fatalf("unexpected updated image %+v", updated)
	}

	assembled, err := contents.Assemble(ctx, content.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if assembled.Images[0].Image != "lab-0.jpg" {
		t.Fatalf("expected reordered image first, got %+v", assembled.Images)
	}

	if err := svc.DeleteImage(ctx, second.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if _, err := svc.GetImage(ctx, second.ID); !errors.Is(err, ErrContentImageNotFound) {
		t.Fatalf("expected ErrContentImageNotFound, got %v", err)
	}
	if err := svc.DeleteImage(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestContentBlockServiceTexts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	contents := NewContentService(gdb, testMedia)
	svc := NewContentBlockService(gdb, testMedia)
	ctx := context.Background()

	content, err := contents.Create(ctx, ContentInput{Title: "Policies"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	text, err := svc.CreateText(ctx, ContentBlockInput{ContentID: content.ID, Text: `<a href="javascript:alert(1)">x</a><b>bold</b>`})
	if err != nil {
		t.Fatalf("create text: %v", err)
	}
	if strings.Contains(text.Text, "javascript") || !strings.Contains(text.Text, "<b>bold</b>") {
		t.Fatalf("expected sanitised text, got %q", text.Text)
	}

	updated, err := svc.UpdateText(ctx, text.ID, ContentBlockInput{ContentID: content.ID, Text: "plain", Order: 4})
	if err != nil {
		t.Fatalf("update text: %v", err)
	}
	if updated.Text != "plain" || updated.Order != 4 || updated.Content != content.ID {
		t.Fatalf("unexpected updated text %+v", updated)
	}

	if err := svc.DeleteText(ctx, text.ID); err != nil {
		t.Fatalf("delete text: %v", err)
	}
	if _, err := svc.GetText(ctx, text.ID); !errors.Is(err, ErrContentTextNotFound) {
		t.Fatalf("expected ErrContentTextNotFound, got %v", err)
	}
}

func TestContentBlockServiceMediaInUse(t *testing.T) {
	gdb := setupServiceTestDB(t)
	contents := NewContentService(gdb, testMedia)
	news := NewNewsService(gdb, testMedia)
	svc := NewContentBlockService(gdb, testMedia)
	ctx := context.Background()

	content, err := contents.Create(ctx, ContentInput{Title: "Labs"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	image, err := svc.CreateImage(ctx, ContentBlockInput{ContentID: content.ID, Image: "uploads/lab.jpg"})
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	if _, err := news.Create(ctx, NewsInput{Title: "Open Day", Image: "uploads/open-day.jpg"}); err != nil {
		t.Fatalf("create news: %v", err)
	}

	cases := []struct {
		ref  string
		want bool
	}{
		{"uploads/lab.jpg", true},
		{"uploads/open-day.jpg", true},
		{"uploads/unknown.jpg", false},
	}
	for _, tc := range cases {
		got, err := svc.MediaInUse(ctx, tc.ref)
		if err != nil {
			t.Fatalf("media in use %s: %v", tc.ref, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected in use %v, got %v", tc.ref, tc.want, got)
		}
	}

	if err := svc.DeleteImage(ctx, image.ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if inUse, err := svc.MediaInUse(ctx, "uploads/lab.jpg"); err != nil || inUse {
		t.Fatalf("expected deleted image ref to be unused, got %v %v", inUse, err)
	}
}
