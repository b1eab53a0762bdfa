package handler

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/collegecms/internal/storage"
	"github.com/gin-gonic/gin"
)

func TestContentCarouselAndDetail(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(http.MethodPost, "/api/contents/", map[string]any{
		"title":      "Gallery",
		"isCarousel": true,
		"images": []map[string]any{
			{"image": "b.jpg", "order": 2},
			{"image": "a.jpg", "order": 0},
		},
	})
	api.CreateContent(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	id := strconv.Itoa(int(decodeBody(t, w)["id"].(float64)))

	c, w = newJSONContext(http.MethodGet, "/api/carousel/", nil)
	api.ListCarousel(c)
	body := decodeBody(t, w)
	if body["count"] != float64(1) {
		t.Fatalf("expected one carousel item, got %v", body["count"])
	}

	c, w = newJSONContext(http.MethodGet, "/api/contents/"+id+"/", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	api.GetContent(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	images, _ := decodeBody(t, w)["images"].([]any)
	if len(images) != 2 || images[0].(map[string]any)["image"] != "a.jpg" {
		t.Fatalf("expected images ordered by order, got %v", images)
	}
}

func TestContentRejectsUnknownRole(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(http.MethodPost, "/api/contents/", map[string]any{"title": "Odd", "role": "banner"})
	api.CreateContent(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	fields, _ := decodeBody(t, w)["fields"].(map[string]any)
	if _, ok := fields["role"]; !ok {
		t.Fatalf("expected role field error, got %v", fields)
	}

	c, w = newJSONContext(http.MethodPost, "/api/contents/", map[string]any{"title": "Both", "isPage": true, "isCarousel": true})
	api.CreateContent(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for conflicting flags, got %d", w.Code)
	}
}

func TestContentBlocksEndpoints(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(http.MethodPost, "/api/contents/", map[string]any{"title": "Labs"})
	api.CreateContent(c)
	contentID := decodeBody(t, w)["id"]

	c, w = newJSONContext(http.MethodPost, "/api/content-texts/", map[string]any{"content": contentID, "text": "<b>Open</b><script>x</script>"})
	api.CreateContentText(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if text := decodeBody(t, w)["text"]; text != "<b>Open</b>" {
		t.Fatalf("expected sanitised text, got %v", text)
	}

	c, w = newJSONContext(http.MethodPost, "/api/content-images/", map[string]any{"text": "orphan"})
	api.CreateContentImage(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without content, got %d", w.Code)
	}

	c, w = newJSONContext(http.MethodGet, "/api/content-texts/?content="+strconv.Itoa(int(contentID.(float64))), nil)
	api.ListContentTexts(c)
	if count := decodeBody(t, w)["count"]; count != float64(1) {
		t.Fatalf("expected one text block, got %v", count)
	}
}

func TestListContentsFiltersByPageID(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(http.MethodPost, "/api/pages/", map[string]any{
		"title":    "About",
		"contents": []map[string]any{{"title": "Mission"}},
	})
	api.CreatePage(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	pageID := decodeBody(t, w)["id"].(string)

	c, w = newJSONContext(http.MethodPost, "/api/contents/", map[string]any{"title": "Loose"})
	api.CreateContent(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	cases := []struct {
		query string
		title string
	}{
		{"?page_id=" + pageID, "Mission"},
		{"?page_id=null", "Loose"},
		{"?page_id=" + pageID + "&page=1", "Mission"},
	}
	for _, tc := range cases {
		c, w = newJSONContext(http.MethodGet, "/api/contents/"+tc.query, nil)
		api.ListContents(c)
		body := decodeBody(t, w)
		if body["count"] != float64(1) {
			t.Fatalf("%s: expected one content, got %v", tc.query, body["count"])
		}
		results, _ := body["results"].([]any)
		if len(results) != 1 || results[0].(map[string]any)["title"] != tc.title {
			t.Fatalf("%s: expected %s, got %v", tc.query, tc.title, results)
		}
	}
}

func TestDeleteContentImageRemovesUnusedUpload(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	local := api.storage.(*storage.Local)
	const key = "uploads/lab.png"
	if _, err := local.Save(context.Background(), key, bytes.NewReader([]byte("png")), "image/png"); err != nil {
		t.Fatalf("save upload: %v", err)
	}
	stored := filepath.Join(local.Dir(), filepath.FromSlash(key))

	c, w := newJSONContext(http.MethodPost, "/api/contents/", map[string]any{
		"title":  "Labs",
		"images": []map[string]any{{"image": key, "order": 0}, {"image": key, "order": 1}},
	})
	api.CreateContent(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	images, _ := decodeBody(t, w)["images"].([]any)
	if len(images) != 2 {
		t.Fatalf("expected two images, got %v", images)
	}

	deleteImage := func(image any) {
		t.Helper()
		id := strconv.Itoa(int(image.(map[string]any)["id"].(float64)))
		c, w := newJSONContext(http.MethodDelete, "/api/content-images/"+id+"/", nil)
		c.Params = gin.Params{{Key: "id", Value: id}}
		api.DeleteContentImage(c)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d: %s", w.Code, w.Body.String())
		}
	}

	deleteImage(images[0])
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("file still referenced by another image should remain: %v", err)
	}

	deleteImage(images[1])
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Fatalf("expected unreferenced upload to be removed, got %v", err)
	}
}
