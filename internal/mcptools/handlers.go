package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/deepsource-contrib/deepsource-mcp/internal/deepsource"
	"github.com/deepsource-contrib/deepsource-mcp/internal/pagination"
)

// API is the subset of the DeepSource client the tool handlers use.
type API interface {
	ListProjects(ctx context.Context) ([]deepsource.Project, error)
	ListIssues(ctx context.Context, projectKey string, filter deepsource.IssueFilter, params pagination.Params) (pagination.Response[deepsource.Issue], error)
	ListRuns(ctx context.Context, projectKey string, filter deepsource.RunFilter, params pagination.Params) (pagination.Response[deepsource.Run], error)
	GetRun(ctx context.Context, runUID string) (*deepsource.Run, error)
	ListRecentRunIssues(ctx context.Context, projectKey, branch string, params pagination.Params) (deepsource.RecentRunIssues, error)
	ListDependencyVulnerabilities(ctx context.Context, projectKey string, params pagination.Params) (pagination.Response[deepsource.Vulnerability], error)
	GetQualityMetrics(ctx context.Context, projectKey string, shortcodes []deepsource.MetricShortcode) ([]deepsource.Metric, error)
	UpdateMetricThreshold(ctx context.Context, input deepsource.UpdateThresholdInput) (bool, error)
	UpdateMetricSetting(ctx context.Context, input deepsource.UpdateSettingInput) (bool, error)
	GetComplianceReport(ctx context.Context, projectKey string, reportType deepsource.ReportType) (*deepsource.ComplianceReport, error)
}

// Compile-time interface check.
var _ API = (*deepsource.Client)(nil)

// DeepSourceService holds the API client used by the MCP tool handlers.
type DeepSourceService struct {
	api    API
	logger zerolog.Logger
}

// NewDeepSourceService creates a DeepSourceService backed by the given API.
func NewDeepSourceService(api API, logger zerolog.Logger) *DeepSourceService {
	return &DeepSourceService{api: api, logger: logger}
}

// Projects lists all repositories visible to the configured API key.
func (s *DeepSourceService) Projects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ProjectsInput,
) (*mcp.CallToolResult, ProjectsOutput, error) {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return nil, ProjectsOutput{}, fmt.Errorf("list projects: %w", err)
	}
	return nil, ProjectsOutput{Projects: projects, Total: len(projects)}, nil
}

// ProjectIssues lists a repository's issues with optional filters.
func (s *DeepSourceService) ProjectIssues(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectIssuesInput,
) (*mcp.CallToolResult, ProjectIssuesOutput, error) {
	if input.ProjectKey == "" {
		return nil, ProjectIssuesOutput{}, fmt.Errorf("projectKey is required")
	}

	filter := deepsource.IssueFilter{
		Path:     input.Path,
		Analyzer: input.Analyzer,
		Tags:     input.Tags,
	}
	resp, err := s.api.ListIssues(ctx, input.ProjectKey, filter, input.Params())
	if err != nil {
		return nil, ProjectIssuesOutput{}, fmt.Errorf("list issues: %w", err)
	}
	return nil, ProjectIssuesOutput{
		Issues:     resp.Items,
		PageInfo:   resp.PageInfo,
		TotalCount: resp.TotalCount,
	}, nil
}

// Runs lists a repository's analysis runs.
func (s *DeepSourceService) Runs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunsInput,
) (*mcp.CallToolResult, RunsOutput, error) {
	if input.ProjectKey == "" {
		return nil, RunsOutput{}, fmt.Errorf("projectKey is required")
	}

	resp, err := s.api.ListRuns(ctx, input.ProjectKey, deepsource.RunFilter{Analyzer: input.Analyzer}, input.Params())
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("list runs: %w", err)
	}
	return nil, RunsOutput{
		Runs:       resp.Items,
		PageInfo:   resp.PageInfo,
		TotalCount: resp.TotalCount,
	}, nil
}

// Run fetches a single analysis run by its runUid.
func (s *DeepSourceService) Run(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	if input.RunID == "" {
		return nil, RunOutput{}, fmt.Errorf("runId is required")
	}

	run, err := s.api.GetRun(ctx, input.RunID)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("get run: %w", err)
	}
	return nil, RunOutput{Run: *run}, nil
}

// RecentRunIssues returns the issues of the most recent analysis run on a
// branch.
func (s *DeepSourceService) RecentRunIssues(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentRunIssuesInput,
) (*mcp.CallToolResult, RecentRunIssuesOutput, error) {
	if input.ProjectKey == "" {
		return nil, RecentRunIssuesOutput{}, fmt.Errorf("projectKey is required")
	}
	if input.Branch == "" {
		return nil, RecentRunIssuesOutput{}, fmt.Errorf("branch is required")
	}

	result, err := s.api.ListRecentRunIssues(ctx, input.ProjectKey, input.Branch, input.Params())
	if err != nil {
		return nil, RecentRunIssuesOutput{}, fmt.Errorf("recent run issues: %w", err)
	}
	return nil, RecentRunIssuesOutput{
		Run:        result.Run,
		Issues:     result.Issues.Items,
		PageInfo:   result.Issues.PageInfo,
		TotalCount: result.Issues.TotalCount,
	}, nil
}

// DependencyVulnerabilities lists vulnerability occurrences in the
// repository's dependencies.
func (s *DeepSourceService) DependencyVulnerabilities(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DependencyVulnerabilitiesInput,
) (*mcp.CallToolResult, DependencyVulnerabilitiesOutput, error) {
	if input.ProjectKey == "" {
		return nil, DependencyVulnerabilitiesOutput{}, fmt.Errorf("projectKey is required")
	}

	resp, err := s.api.ListDependencyVulnerabilities(ctx, input.ProjectKey, input.Params())
	if err != nil {
		return nil, DependencyVulnerabilitiesOutput{}, fmt.Errorf("dependency vulnerabilities: %w", err)
	}
	return nil, DependencyVulnerabilitiesOutput{
		Vulnerabilities: resp.Items,
		PageInfo:        resp.PageInfo,
		TotalCount:      resp.TotalCount,
	}, nil
}

// QualityMetrics returns the repository's quality metrics.
func (s *DeepSourceService) QualityMetrics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QualityMetricsInput,
) (*mcp.CallToolResult, QualityMetricsOutput, error) {
	if input.ProjectKey == "" {
		return nil, QualityMetricsOutput{}, fmt.Errorf("projectKey is required")
	}

	shortcodes := make([]deepsource.MetricShortcode, 0, len(input.Shortcodes))
	for _, sc := range input.Shortcodes {
		code := deepsource.MetricShortcode(sc)
		if !deepsource.ValidMetricShortcode(code) {
			return nil, QualityMetricsOutput{}, fmt.Errorf("unknown metric shortcode: %s", sc)
		}
		shortcodes = append(shortcodes, code)
	}

	metrics, err := s.api.GetQualityMetrics(ctx, input.ProjectKey, shortcodes)
	if err != nil {
		return nil, QualityMetricsOutput{}, fmt.Errorf("quality metrics: %w", err)
	}
	return nil, QualityMetricsOutput{Metrics: metrics}, nil
}

// UpdateMetricThreshold sets or removes the threshold of one metric item.
func (s *DeepSourceService) UpdateMetricThreshold(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateMetricThresholdInput,
) (*mcp.CallToolResult, UpdateMetricThresholdOutput, error) {
	if input.ProjectKey == "" {
		return nil, UpdateMetricThresholdOutput{}, fmt.Errorf("projectKey is required")
	}
	if input.MetricKey == "" {
		return nil, UpdateMetricThresholdOutput{}, fmt.Errorf("metricKey is required")
	}
	code := deepsource.MetricShortcode(input.MetricShortcode)
	if !deepsource.ValidMetricShortcode(code) {
		return nil, UpdateMetricThresholdOutput{}, fmt.Errorf("unknown metric shortcode: %s", input.MetricShortcode)
	}

	ok, err := s.api.UpdateMetricThreshold(ctx, deepsource.UpdateThresholdInput{
		ProjectKey:      input.ProjectKey,
		MetricShortcode: code,
		MetricKey:       input.MetricKey,
		Threshold:       input.Threshold,
	})
	if err != nil {
		return nil, UpdateMetricThresholdOutput{}, fmt.Errorf("update metric threshold: %w", err)
	}

	s.logger.Info().
		Str("project_key", input.ProjectKey).
		Str("metric", input.MetricShortcode).
		Str("metric_key", input.MetricKey).
		Bool("ok", ok).
		Msg("metric threshold updated")
	return nil, UpdateMetricThresholdOutput{OK: ok}, nil
}

// UpdateMetricSetting toggles reporting and enforcement for a metric.
func (s *DeepSourceService) UpdateMetricSetting(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateMetricSettingInput,
) (*mcp.CallToolResult, UpdateMetricSettingOutput, error) {
	if input.ProjectKey == "" {
		return nil, UpdateMetricSettingOutput{}, fmt.Errorf("projectKey is required")
	}
	code := deepsource.MetricShortcode(input.MetricShortcode)
	if !deepsource.ValidMetricShortcode(code) {
		return nil, UpdateMetricSettingOutput{}, fmt.Errorf("unknown metric shortcode: %s", input.MetricShortcode)
	}

	ok, err := s.api.UpdateMetricSetting(ctx, deepsource.UpdateSettingInput{
		ProjectKey:          input.ProjectKey,
		MetricShortcode:     code,
		IsReported:          input.IsReported,
		IsThresholdEnforced: input.IsThresholdEnforced,
	})
	if err != nil {
		return nil, UpdateMetricSettingOutput{}, fmt.Errorf("update metric setting: %w", err)
	}
	return nil, UpdateMetricSettingOutput{OK: ok}, nil
}

// ComplianceReport fetches a security compliance report.
func (s *DeepSourceService) ComplianceReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComplianceReportInput,
) (*mcp.CallToolResult, ComplianceReportOutput, error) {
	if input.ProjectKey == "" {
		return nil, ComplianceReportOutput{}, fmt.Errorf("projectKey is required")
	}
	reportType := deepsource.ReportType(input.ReportType)
	if !deepsource.ValidReportType(reportType) {
		return nil, ComplianceReportOutput{}, fmt.Errorf("unknown report type: %s (want OWASP_TOP_10, SANS_TOP_25, or MISRA_C)", input.ReportType)
	}

	report, err := s.api.GetComplianceReport(ctx, input.ProjectKey, reportType)
	if err != nil {
		return nil, ComplianceReportOutput{}, fmt.Errorf("compliance report: %w", err)
	}
	return nil, ComplianceReportOutput{Report: *report}, nil
}
