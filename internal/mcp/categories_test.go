package mcp

import (
	"context"
	"strings"
	"testing"
)

func TestServer_ListCategories(t *testing.T) {
	t.Run("returns the category list", func(t *testing.T) {
		h := newTestHelper(t)
		h.stub.AddCategory(map[string]any{"id": "cat-1", "name": "finance"})
		h.stub.AddCategory(map[string]any{"id": "cat-2", "name": "ops"})

		result, _, err := h.server.ListCategories(context.Background(), nil, ListCategoriesInput{})
		if err != nil {
			t.Fatalf("ListCategories() error = %v", err)
		}

		var categories []map[string]any
		unmarshalResult(t, result, &categories)
		if len(categories) != 2 {
			t.Fatalf("len(categories) = %d, want 2", len(categories))
		}
		if categories[0]["name"] != "finance" || categories[1]["name"] != "ops" {
			t.Errorf("categories = %v", categories)
		}
	})

	t.Run("injects the organization scope", func(t *testing.T) {
		h := newTestHelper(t)
		h.client.Session().SetScope(7)

		if _, _, err := h.server.ListCategories(context.Background(), nil, ListCategoriesInput{}); err != nil {
			t.Fatalf("ListCategories() error = %v", err)
		}

		last, ok := h.stub.LastRequest()
		if !ok {
			t.Fatal("stub recorded no requests")
		}
		if got := last.Query.Get("orgId"); got != "7" {
			t.Errorf("orgId = %q, want 7", got)
		}
	})

	t.Run("fails fast on an empty session", func(t *testing.T) {
		h := newBareHelper(t)

		result, _, err := h.server.ListCategories(context.Background(), nil, ListCategoriesInput{})
		if err != nil {
			t.Fatalf("ListCategories() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("ListCategories() IsError = false, want true")
		}
		if got := resultText(t, result); got != "dashboard URL is not configured; call set_dashboard_url first" {
			t.Errorf("text = %q", got)
		}
		if got := len(h.stub.Requests()); got != 0 {
			t.Errorf("stub recorded %d requests, want 0", got)
		}
	})

	t.Run("never leaks the remote error body", func(t *testing.T) {
		h := newTestHelper(t)
		h.client.Session().SeedCredential("revoked-token")

		result, _, err := h.server.ListCategories(context.Background(), nil, ListCategoriesInput{})
		if err != nil {
			t.Fatalf("ListCategories() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("ListCategories() IsError = false, want true")
		}
		got := resultText(t, result)
		if got != "list_categories: dashboard API error: 401 Unauthorized" {
			t.Errorf("text = %q", got)
		}
		// The stub's 401 body says "invalid token"; that detail must stay out
		// of the tool result.
		if strings.Contains(got, "invalid token") {
			t.Errorf("text %q leaks the response body", got)
		}
	})
}

func TestServer_GetCategory(t *testing.T) {
	t.Run("fetches one category by id", func(t *testing.T) {
		h := newTestHelper(t)
		h.stub.AddCategory(map[string]any{"id": "cat-1", "name": "finance"})

		result, _, err := h.server.GetCategory(context.Background(), nil, GetCategoryInput{CategoryID: "cat-1"})
		if err != nil {
			t.Fatalf("GetCategory() error = %v", err)
		}

		var category map[string]any
		unmarshalResult(t, result, &category)
		if category["name"] != "finance" {
			t.Errorf("category[name] = %v, want finance", category["name"])
		}

		last, ok := h.stub.LastRequest()
		if !ok {
			t.Fatal("stub recorded no requests")
		}
		if last.Path != "/api/categories/cat-1" {
			t.Errorf("path = %q, want /api/categories/cat-1", last.Path)
		}
	})

	t.Run("reports not found", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.GetCategory(context.Background(), nil, GetCategoryInput{CategoryID: "missing"})
		if err != nil {
			t.Fatalf("GetCategory() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("GetCategory() IsError = false, want true")
		}
		if got := resultText(t, result); got != "get_category: dashboard API error: 404 Not Found" {
			t.Errorf("text = %q", got)
		}
	})

	t.Run("rejects ids that would rewrite the path", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.GetCategory(context.Background(), nil, GetCategoryInput{CategoryID: "../admin"})
		if err != nil {
			t.Fatalf("GetCategory() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("GetCategory() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "must be in a valid format") {
			t.Errorf("text = %q, want format complaint", got)
		}
		if got := len(h.stub.Requests()); got != 0 {
			t.Errorf("stub recorded %d requests, want 0", got)
		}
	})

	t.Run("rejects blank id", func(t *testing.T) {
		h := newTestHelper(t)

		result, _, err := h.server.GetCategory(context.Background(), nil, GetCategoryInput{})
		if err != nil {
			t.Fatalf("GetCategory() error = %v", err)
		}
		if !result.IsError {
			t.Fatal("GetCategory() IsError = false, want true")
		}
		if got := resultText(t, result); !strings.Contains(got, "category_id: cannot be blank") {
			t.Errorf("text = %q, want blank-id complaint", got)
		}
	})
}
