package handlers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"fitroom-server/internal/assets"
)

func TestDefaultWardrobe(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/default-wardrobe", nil, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var items []struct {
		Filename string `json:"filename"`
		Type     string `json:"type"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != len(assets.Catalog) {
		t.Fatalf("items = %d, want %d", len(items), len(assets.Catalog))
	}
	for _, item := range items {
		if !strings.HasPrefix(item.Filename, "wardrobe_") {
			t.Fatalf("filename %q not namespaced", item.Filename)
		}
		if item.Type != "upper" && item.Type != "lower" {
			t.Fatalf("type = %q", item.Type)
		}
		if item.URL != "/uploads/"+item.Filename {
			t.Fatalf("url = %q", item.URL)
		}
		if !env.files.Exists(item.Filename) {
			t.Fatalf("garment %q not materialized", item.Filename)
		}
	}
}

func TestDefaultWardrobeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, http.MethodGet, "/default-wardrobe", nil, "")
	second := env.do(t, http.MethodGet, "/default-wardrobe", nil, "")

	if first.Body.String() != second.Body.String() {
		t.Fatalf("wardrobe listing changed across calls")
	}

	names, _ := env.files.List()
	count := 0
	for _, name := range names {
		if strings.HasPrefix(name, "wardrobe_") {
			count++
		}
	}
	if count != len(assets.Catalog) {
		t.Fatalf("materialized copies = %d, want %d", count, len(assets.Catalog))
	}
}
