package mcptools

import (
	"github.com/deepsource-contrib/deepsource-mcp/internal/deepsource"
	"github.com/deepsource-contrib/deepsource-mcp/internal/pagination"
)

// --- MCP Tool Input/Output Types ---
// These structs define the JSON schema for each MCP tool. The MCP Go SDK
// auto-generates JSON schemas from struct tags.

// PaginationInput carries the raw pagination intent of a tool call. The
// fields are resolved through pagination.Normalize before any fetch, so
// conflicting combinations are allowed and resolved by precedence.
type PaginationInput struct {
	Offset   *int    `json:"offset,omitempty" jsonschema:"zero-based row offset for offset-style paging"`
	First    *int    `json:"first,omitempty" jsonschema:"page size when paging forward"`
	Last     *int    `json:"last,omitempty" jsonschema:"page size when paging backward"`
	After    *string `json:"after,omitempty" jsonschema:"opaque cursor; fetch items strictly after it"`
	Before   *string `json:"before,omitempty" jsonschema:"opaque cursor; fetch items strictly before it. Takes precedence over after"`
	PageSize *int    `json:"page_size,omitempty" jsonschema:"alias for first"`
	MaxPages *int    `json:"max_pages,omitempty" jsonschema:"maximum number of upstream pages to fetch and merge; absent means a single page"`
}

// Params converts the input into pagination parameters.
func (in PaginationInput) Params() pagination.Params {
	return pagination.Params{
		Offset:   in.Offset,
		First:    in.First,
		Last:     in.Last,
		After:    in.After,
		Before:   in.Before,
		PageSize: in.PageSize,
		MaxPages: in.MaxPages,
	}
}

// ProjectsInput is the input for the projects tool.
type ProjectsInput struct{}

// ProjectsOutput is the result of the projects tool.
type ProjectsOutput struct {
	Projects []deepsource.Project `json:"projects"`
	Total    int                  `json:"total"`
}

// ProjectIssuesInput is the input for the project_issues tool.
type ProjectIssuesInput struct {
	ProjectKey string   `json:"projectKey" jsonschema:"project key in provider/login/name form, as returned by the projects tool"`
	Path       string   `json:"path,omitempty" jsonschema:"only issues in this file path"`
	Analyzer   string   `json:"analyzer,omitempty" jsonschema:"only issues raised by this analyzer shortcode"`
	Tags       []string `json:"tags,omitempty" jsonschema:"only issues carrying all of these tags"`
	PaginationInput
}

// ProjectIssuesOutput is the result of the project_issues tool.
type ProjectIssuesOutput struct {
	Issues     []deepsource.Issue  `json:"issues"`
	PageInfo   pagination.PageInfo `json:"pageInfo"`
	TotalCount int                 `json:"totalCount"`
}

// RunsInput is the input for the runs tool.
type RunsInput struct {
	ProjectKey string `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	Analyzer   string `json:"analyzer,omitempty" jsonschema:"only runs that executed this analyzer shortcode"`
	PaginationInput
}

// RunsOutput is the result of the runs tool.
type RunsOutput struct {
	Runs       []deepsource.Run    `json:"runs"`
	PageInfo   pagination.PageInfo `json:"pageInfo"`
	TotalCount int                 `json:"totalCount"`
}

// RunInput is the input for the run tool.
type RunInput struct {
	RunID string `json:"runId" jsonschema:"runUid or commitOid of the analysis run"`
}

// RunOutput is the result of the run tool.
type RunOutput struct {
	Run deepsource.Run `json:"run"`
}

// RecentRunIssuesInput is the input for the recent_run_issues tool.
type RecentRunIssuesInput struct {
	ProjectKey string `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	Branch     string `json:"branch" jsonschema:"branch whose most recent analysis run to inspect"`
	PaginationInput
}

// RecentRunIssuesOutput is the result of the recent_run_issues tool.
type RecentRunIssuesOutput struct {
	Run        deepsource.Run      `json:"run"`
	Issues     []deepsource.Issue  `json:"issues"`
	PageInfo   pagination.PageInfo `json:"pageInfo"`
	TotalCount int                 `json:"totalCount"`
}

// DependencyVulnerabilitiesInput is the input for the
// dependency_vulnerabilities tool.
type DependencyVulnerabilitiesInput struct {
	ProjectKey string `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	PaginationInput
}

// DependencyVulnerabilitiesOutput is the result of the
// dependency_vulnerabilities tool.
type DependencyVulnerabilitiesOutput struct {
	Vulnerabilities []deepsource.Vulnerability `json:"vulnerabilities"`
	PageInfo        pagination.PageInfo        `json:"pageInfo"`
	TotalCount      int                        `json:"totalCount"`
}

// QualityMetricsInput is the input for the quality_metrics tool.
type QualityMetricsInput struct {
	ProjectKey string   `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	Shortcodes []string `json:"shortcodes,omitempty" jsonschema:"restrict to these metric shortcodes (LCV, BCV, CCV, TCV, CMP, DDP, DCV, NLCV, NBCV, SCV)"`
}

// QualityMetricsOutput is the result of the quality_metrics tool.
type QualityMetricsOutput struct {
	Metrics []deepsource.Metric `json:"metrics"`
}

// UpdateMetricThresholdInput is the input for the update_metric_threshold tool.
type UpdateMetricThresholdInput struct {
	ProjectKey      string `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	MetricShortcode string `json:"metricShortcode" jsonschema:"metric shortcode (e.g. LCV)"`
	MetricKey       string `json:"metricKey" jsonschema:"metric item key, e.g. AGGREGATE or an analyzer key"`
	Threshold       *int   `json:"threshold,omitempty" jsonschema:"new threshold value; omit to remove the threshold"`
}

// UpdateMetricThresholdOutput is the result of the update_metric_threshold tool.
type UpdateMetricThresholdOutput struct {
	OK bool `json:"ok"`
}

// UpdateMetricSettingInput is the input for the update_metric_setting tool.
type UpdateMetricSettingInput struct {
	ProjectKey          string `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	MetricShortcode     string `json:"metricShortcode" jsonschema:"metric shortcode (e.g. LCV)"`
	IsReported          bool   `json:"isReported" jsonschema:"whether the metric is reported for the repository"`
	IsThresholdEnforced bool   `json:"isThresholdEnforced" jsonschema:"whether the metric's threshold blocks analysis"`
}

// UpdateMetricSettingOutput is the result of the update_metric_setting tool.
type UpdateMetricSettingOutput struct {
	OK bool `json:"ok"`
}

// ComplianceReportInput is the input for the compliance_report tool.
type ComplianceReportInput struct {
	ProjectKey string `json:"projectKey" jsonschema:"project key in provider/login/name form"`
	ReportType string `json:"reportType" jsonschema:"OWASP_TOP_10, SANS_TOP_25, or MISRA_C"`
}

// ComplianceReportOutput is the result of the compliance_report tool.
type ComplianceReportOutput struct {
	Report deepsource.ComplianceReport `json:"report"`
}
