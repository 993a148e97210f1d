package mcp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plotdeck/plotdeck-mcp/internal/dashboard"
)

// exportFormat constrains the format passed to the export endpoint. The
// dashboard decides which formats it supports; this only keeps the value a
// plain token.
var exportFormat = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// registerChartTools registers the chart resource tools.
// Tools: list_charts, get_chart, get_chart_data, export_chart
func (s *Server) registerChartTools() error {
	listSchema, err := jsonschema.For[ListChartsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_charts: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_charts",
		Description: "List the dashboard charts visible to the current credentials and organization scope, optionally narrowed to one category.",
		InputSchema: listSchema,
	}, s.ListCharts)

	getSchema, err := jsonschema.For[GetChartInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_chart: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_chart",
		Description: "Fetch a single chart definition by id.",
		InputSchema: getSchema,
	}, s.GetChart)

	dataSchema, err := jsonschema.For[GetChartDataInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_chart_data: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_chart_data",
		Description: "Fetch the data rows behind a chart. Supports the compact filter grammar \"field(operator)=value&field(operator)=value\" (operators eq, ne, gt, lt, ge, le, like, nlike) plus limit and skip for paging.",
		InputSchema: dataSchema,
	}, s.GetChartData)

	exportSchema, err := jsonschema.For[ExportChartInput](nil)
	if err != nil {
		return fmt.Errorf("schema for export_chart: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "export_chart",
		Description: "Export a chart in a rendered format (csv by default). Binary formats are returned base64-encoded with their content type.",
		InputSchema: exportSchema,
	}, s.ExportChart)

	return nil
}

// ListChartsInput defines the input schema for list_charts.
type ListChartsInput struct {
	CategoryID string `json:"category_id,omitempty" jsonschema:"Optional category id to narrow the listing to"`
}

// GetChartInput defines the input schema for get_chart.
type GetChartInput struct {
	ChartID string `json:"chart_id" jsonschema:"The id of the chart to fetch"`
}

// GetChartDataInput defines the input schema for get_chart_data.
type GetChartDataInput struct {
	ChartID string `json:"chart_id" jsonschema:"The id of the chart whose data to fetch"`
	Filters string `json:"filters,omitempty" jsonschema:"Optional filter expression: field(operator)=value pairs joined by &, e.g. status(eq)=active&name(like)=rev"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Optional maximum number of rows to return"`
	Skip    int    `json:"skip,omitempty" jsonschema:"Optional number of rows to skip before returning data"`
}

// ExportChartInput defines the input schema for export_chart.
type ExportChartInput struct {
	ChartID string `json:"chart_id" jsonschema:"The id of the chart to export"`
	Format  string `json:"format,omitempty" jsonschema:"Optional export format such as csv, xlsx, pdf, or png. Defaults to csv"`
}

// ListCharts handles the list_charts MCP tool call.
func (s *Server) ListCharts(ctx context.Context, req *mcp.CallToolRequest, in ListChartsInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.CategoryID, validation.Match(resourceID)),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	var query url.Values
	if in.CategoryID != "" {
		query = url.Values{"categoryId": []string{in.CategoryID}}
	}

	resp, err := s.client.Request(ctx, http.MethodGet, "/api/charts", nil, query)
	if err != nil {
		return s.errorToResult("list_charts", err), nil, nil
	}

	result, err := responseToResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// GetChart handles the get_chart MCP tool call.
func (s *Server) GetChart(ctx context.Context, req *mcp.CallToolRequest, in GetChartInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.ChartID, validation.Required, validation.Match(resourceID)),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	resp, err := s.client.Request(ctx, http.MethodGet, "/api/charts/"+in.ChartID, nil, nil)
	if err != nil {
		return s.errorToResult("get_chart", err), nil, nil
	}

	result, err := responseToResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// GetChartData handles the get_chart_data MCP tool call.
func (s *Server) GetChartData(ctx context.Context, req *mcp.CallToolRequest, in GetChartDataInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.ChartID, validation.Required, validation.Match(resourceID)),
		validation.Field(&in.Limit, validation.Min(0)),
		validation.Field(&in.Skip, validation.Min(0)),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	query := url.Values{}
	for key, value := range dashboard.ParseFilters(in.Filters) {
		query.Set(key, value)
	}
	if in.Limit > 0 {
		query.Set("limit", strconv.Itoa(in.Limit))
	}
	if in.Skip > 0 {
		query.Set("skip", strconv.Itoa(in.Skip))
	}

	resp, err := s.client.Request(ctx, http.MethodGet, "/api/charts/"+in.ChartID+"/data", nil, query)
	if err != nil {
		return s.errorToResult("get_chart_data", err), nil, nil
	}

	result, err := responseToResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}

// ExportChart handles the export_chart MCP tool call.
func (s *Server) ExportChart(ctx context.Context, req *mcp.CallToolRequest, in ExportChartInput) (*mcp.CallToolResult, any, error) {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.ChartID, validation.Required, validation.Match(resourceID)),
		validation.Field(&in.Format, validation.Match(exportFormat)),
	); err != nil {
		return errorResult("invalid input: %s", err.Error()), nil, nil
	}

	format := in.Format
	if format == "" {
		format = "csv"
	}
	query := url.Values{}
	query.Set("format", format)

	resp, err := s.client.Request(ctx, http.MethodGet, "/api/charts/"+in.ChartID+"/export", nil, query)
	if err != nil {
		return s.errorToResult("export_chart", err), nil, nil
	}

	result, err := responseToResult(resp)
	if err != nil {
		return nil, nil, err
	}
	return result, nil, nil
}
