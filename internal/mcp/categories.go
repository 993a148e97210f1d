package mcp

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// resourceID constrains ids that get spliced into request paths. The
// dashboard uses short alphanumeric ids; anything outside this set (slashes,
// dots, percent sequences) is rejected before it can rewrite the path.
var resourceID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// registerCategoryTools registers the category resource tools.
// Tools: list_categories, get_category
func (s *Server) registerCategoryTools() error {
	listSchema, err := jsonschema.For[ListCategoriesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_categories: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_categories",
		Description: "List the dashboard categories visible to the current credentials and organization scope.",
		InputSchema: listSchema,
	}, s.ListCategories)

	getSchema, err := jsonschema.For[GetCategoryInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_category: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_category",
		Description: "Fetch a single category by id.",
		InputSchema: getSchema,
	}, s.GetCategory)

	return nil
}

// ListCategoriesInput defines the input schema for list_categories. No parameters.
type ListCategoriesInput struct{}

// GetCategoryInput defines the input schema for get_category.
type GetCategoryInput struct {
	CategoryID string `json:"category_id" jsonschema:"The id of the category to fetch"`
}

// ListCategories handles the list_categories MCP tool call.
func (s *Server) ListCategories(ctx context.Context, req *mcp.CallToolRequest, in ListCategoriesInput) (*mcp.CallToolResult, any, error) {
	resp, err := s.client.Request(ctx, http.MethodGet, "/api/categories", nil, nil)
	if err != nil {
		return s.errorToResult("list_categories", err), nil, nil
	}

	result, err := responseToResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// GetCategory handles the get_category MCP tool call.
func (s *Server) GetCategory(ctx context.Context, req *mcp.CallToolRequest, in GetCategoryInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.CategoryID, validation.Required, validation.Match(resourceID)),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	resp, err := s.client.Request(ctx, http.MethodGet, "/api/categories/"+in.CategoryID, nil, nil)
	if err != nil {
		return s.errorToResult("get_category", err), nil, nil
	}

	result, err := responseToResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}
