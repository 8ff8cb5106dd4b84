package mcptools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsource-contrib/deepsource-mcp/internal/deepsource"
	"github.com/deepsource-contrib/deepsource-mcp/internal/pagination"
)

// ---------------------------------------------------------------------------
// Fake API
// ---------------------------------------------------------------------------

type fakeAPI struct {
	listProjects          func(ctx context.Context) ([]deepsource.Project, error)
	listIssues            func(ctx context.Context, projectKey string, filter deepsource.IssueFilter, params pagination.Params) (pagination.Response[deepsource.Issue], error)
	listRuns              func(ctx context.Context, projectKey string, filter deepsource.RunFilter, params pagination.Params) (pagination.Response[deepsource.Run], error)
	getRun                func(ctx context.Context, runUID string) (*deepsource.Run, error)
	listRecentRunIssues   func(ctx context.Context, projectKey, branch string, params pagination.Params) (deepsource.RecentRunIssues, error)
	listVulnerabilities   func(ctx context.Context, projectKey string, params pagination.Params) (pagination.Response[deepsource.Vulnerability], error)
	getQualityMetrics     func(ctx context.Context, projectKey string, shortcodes []deepsource.MetricShortcode) ([]deepsource.Metric, error)
	updateMetricThreshold func(ctx context.Context, input deepsource.UpdateThresholdInput) (bool, error)
	updateMetricSetting   func(ctx context.Context, input deepsource.UpdateSettingInput) (bool, error)
	getComplianceReport   func(ctx context.Context, projectKey string, reportType deepsource.ReportType) (*deepsource.ComplianceReport, error)
}

func (f *fakeAPI) ListProjects(ctx context.Context) ([]deepsource.Project, error) {
	if f.listProjects != nil {
		return f.listProjects(ctx)
	}
	return nil, fmt.Errorf("listProjects not implemented")
}

func (f *fakeAPI) ListIssues(ctx context.Context, projectKey string, filter deepsource.IssueFilter, params pagination.Params) (pagination.Response[deepsource.Issue], error) {
	if f.listIssues != nil {
		return f.listIssues(ctx, projectKey, filter, params)
	}
	return pagination.Response[deepsource.Issue]{}, fmt.Errorf("listIssues not implemented")
}

func (f *fakeAPI) ListRuns(ctx context.Context, projectKey string, filter deepsource.RunFilter, params pagination.Params) (pagination.Response[deepsource.Run], error) {
	if f.listRuns != nil {
		return f.listRuns(ctx, projectKey, filter, params)
	}
	return pagination.Response[deepsource.Run]{}, fmt.Errorf("listRuns not implemented")
}

func (f *fakeAPI) GetRun(ctx context.Context, runUID string) (*deepsource.Run, error) {
	if f.getRun != nil {
		return f.getRun(ctx, runUID)
	}
	return nil, fmt.Errorf("getRun not implemented")
}

func (f *fakeAPI) ListRecentRunIssues(ctx context.Context, projectKey, branch string, params pagination.Params) (deepsource.RecentRunIssues, error) {
	if f.listRecentRunIssues != nil {
		return f.listRecentRunIssues(ctx, projectKey, branch, params)
	}
	return deepsource.RecentRunIssues{}, fmt.Errorf("listRecentRunIssues not implemented")
}

func (f *fakeAPI) ListDependencyVulnerabilities(ctx context.Context, projectKey string, params pagination.Params) (pagination.Response[deepsource.Vulnerability], error) {
	if f.listVulnerabilities != nil {
		return f.listVulnerabilities(ctx, projectKey, params)
	}
	return pagination.Response[deepsource.Vulnerability]{}, fmt.Errorf("listVulnerabilities not implemented")
}

func (f *fakeAPI) GetQualityMetrics(ctx context.Context, projectKey string, shortcodes []deepsource.MetricShortcode) ([]deepsource.Metric, error) {
	if f.getQualityMetrics != nil {
		return f.getQualityMetrics(ctx, projectKey, shortcodes)
	}
	return nil, fmt.Errorf("getQualityMetrics not implemented")
}

func (f *fakeAPI) UpdateMetricThreshold(ctx context.Context, input deepsource.UpdateThresholdInput) (bool, error) {
	if f.updateMetricThreshold != nil {
		return f.updateMetricThreshold(ctx, input)
	}
	return false, fmt.Errorf("updateMetricThreshold not implemented")
}

func (f *fakeAPI) UpdateMetricSetting(ctx context.Context, input deepsource.UpdateSettingInput) (bool, error) {
	if f.updateMetricSetting != nil {
		return f.updateMetricSetting(ctx, input)
	}
	return false, fmt.Errorf("updateMetricSetting not implemented")
}

func (f *fakeAPI) GetComplianceReport(ctx context.Context, projectKey string, reportType deepsource.ReportType) (*deepsource.ComplianceReport, error) {
	if f.getComplianceReport != nil {
		return f.getComplianceReport(ctx, projectKey, reportType)
	}
	return nil, fmt.Errorf("getComplianceReport not implemented")
}

func newTestService(api *fakeAPI) *DeepSourceService {
	return NewDeepSourceService(api, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func TestProjects(t *testing.T) {
	ctx := context.Background()

	t.Run("returns projects with total", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			listProjects: func(context.Context) ([]deepsource.Project, error) {
				return []deepsource.Project{
					{Key: "GITHUB/acme/api-server"},
					{Key: "GITHUB/acme/website"},
				}, nil
			},
		})

		_, out, err := svc.Projects(ctx, nil, ProjectsInput{})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Total)
		assert.Equal(t, "GITHUB/acme/api-server", out.Projects[0].Key)
	})

	t.Run("wraps api errors", func(t *testing.T) {
		apiErr := errors.New("boom")
		svc := newTestService(&fakeAPI{
			listProjects: func(context.Context) ([]deepsource.Project, error) {
				return nil, apiErr
			},
		})

		_, _, err := svc.Projects(ctx, nil, ProjectsInput{})
		require.ErrorIs(t, err, apiErr)
	})
}

// ---------------------------------------------------------------------------
// ProjectIssues
// ---------------------------------------------------------------------------

func TestProjectIssues(t *testing.T) {
	ctx := context.Background()

	t.Run("passes filters and pagination through", func(t *testing.T) {
		var gotFilter deepsource.IssueFilter
		var gotParams pagination.Params
		svc := newTestService(&fakeAPI{
			listIssues: func(_ context.Context, projectKey string, filter deepsource.IssueFilter, params pagination.Params) (pagination.Response[deepsource.Issue], error) {
				assert.Equal(t, "GITHUB/acme/api-server", projectKey)
				gotFilter = filter
				gotParams = params
				return pagination.Response[deepsource.Issue]{
					Items:      []deepsource.Issue{{Shortcode: "GO-W1000"}},
					PageInfo:   pagination.PageInfo{HasNextPage: true, EndCursor: "c1"},
					TotalCount: 42,
				}, nil
			},
		})

		in := ProjectIssuesInput{
			ProjectKey: "GITHUB/acme/api-server",
			Path:       "main.go",
			Analyzer:   "go",
			Tags:       []string{"security"},
		}
		in.First = pagination.Int(20)
		in.MaxPages = pagination.Int(3)

		_, out, err := svc.ProjectIssues(ctx, nil, in)
		require.NoError(t, err)

		assert.Equal(t, "main.go", gotFilter.Path)
		assert.Equal(t, "go", gotFilter.Analyzer)
		assert.Equal(t, []string{"security"}, gotFilter.Tags)
		require.NotNil(t, gotParams.First)
		assert.Equal(t, 20, *gotParams.First)
		require.NotNil(t, gotParams.MaxPages)
		assert.Equal(t, 3, *gotParams.MaxPages)

		require.Len(t, out.Issues, 1)
		assert.True(t, out.PageInfo.HasNextPage)
		assert.Equal(t, 42, out.TotalCount)
	})

	t.Run("requires projectKey", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.ProjectIssues(ctx, nil, ProjectIssuesInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "projectKey is required")
	})
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

func TestRuns(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the analyzer filter", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			listRuns: func(_ context.Context, _ string, filter deepsource.RunFilter, _ pagination.Params) (pagination.Response[deepsource.Run], error) {
				assert.Equal(t, "go", filter.Analyzer)
				return pagination.Response[deepsource.Run]{
					Items:      []deepsource.Run{{RunUID: "run-1", Status: "SUCCESS"}},
					TotalCount: 1,
				}, nil
			},
		})

		_, out, err := svc.Runs(ctx, nil, RunsInput{ProjectKey: "GITHUB/acme/api-server", Analyzer: "go"})
		require.NoError(t, err)
		require.Len(t, out.Runs, 1)
		assert.Equal(t, "run-1", out.Runs[0].RunUID)
	})

	t.Run("requires projectKey", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.Runs(ctx, nil, RunsInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "projectKey is required")
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches by runId", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			getRun: func(_ context.Context, runUID string) (*deepsource.Run, error) {
				assert.Equal(t, "run-1", runUID)
				return &deepsource.Run{RunUID: "run-1", Status: "FAILURE"}, nil
			},
		})

		_, out, err := svc.Run(ctx, nil, RunInput{RunID: "run-1"})
		require.NoError(t, err)
		assert.Equal(t, "FAILURE", out.Run.Status)
	})

	t.Run("requires runId", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.Run(ctx, nil, RunInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "runId is required")
	})
}

// ---------------------------------------------------------------------------
// RecentRunIssues
// ---------------------------------------------------------------------------

func TestRecentRunIssues(t *testing.T) {
	ctx := context.Background()

	t.Run("returns run and issues", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			listRecentRunIssues: func(_ context.Context, projectKey, branch string, _ pagination.Params) (deepsource.RecentRunIssues, error) {
				assert.Equal(t, "GITHUB/acme/api-server", projectKey)
				assert.Equal(t, "main", branch)
				return deepsource.RecentRunIssues{
					Run: deepsource.Run{RunUID: "run-9", BranchName: "main"},
					Issues: pagination.Response[deepsource.Issue]{
						Items:      []deepsource.Issue{{Shortcode: "GO-W1000"}},
						TotalCount: 1,
					},
				}, nil
			},
		})

		_, out, err := svc.RecentRunIssues(ctx, nil, RecentRunIssuesInput{
			ProjectKey: "GITHUB/acme/api-server",
			Branch:     "main",
		})
		require.NoError(t, err)
		assert.Equal(t, "run-9", out.Run.RunUID)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, 1, out.TotalCount)
	})

	t.Run("requires branch", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.RecentRunIssues(ctx, nil, RecentRunIssuesInput{ProjectKey: "GITHUB/acme/api-server"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "branch is required")
	})
}

// ---------------------------------------------------------------------------
// DependencyVulnerabilities
// ---------------------------------------------------------------------------

func TestDependencyVulnerabilities(t *testing.T) {
	ctx := context.Background()

	t.Run("returns vulnerabilities", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			listVulnerabilities: func(_ context.Context, _ string, _ pagination.Params) (pagination.Response[deepsource.Vulnerability], error) {
				return pagination.Response[deepsource.Vulnerability]{
					Items: []deepsource.Vulnerability{
						{Identifier: "CVE-2024-12345", PackageName: "left-pad", Severity: "HIGH"},
					},
					TotalCount: 1,
				}, nil
			},
		})

		_, out, err := svc.DependencyVulnerabilities(ctx, nil, DependencyVulnerabilitiesInput{
			ProjectKey: "GITHUB/acme/api-server",
		})
		require.NoError(t, err)
		require.Len(t, out.Vulnerabilities, 1)
		assert.Equal(t, "CVE-2024-12345", out.Vulnerabilities[0].Identifier)
	})

	t.Run("requires projectKey", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.DependencyVulnerabilities(ctx, nil, DependencyVulnerabilitiesInput{})
		require.Error(t, err)
	})
}

// ---------------------------------------------------------------------------
// QualityMetrics
// ---------------------------------------------------------------------------

func TestQualityMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("validates and converts shortcodes", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			getQualityMetrics: func(_ context.Context, _ string, shortcodes []deepsource.MetricShortcode) ([]deepsource.Metric, error) {
				assert.Equal(t, []deepsource.MetricShortcode{deepsource.MetricLineCoverage, deepsource.MetricBranchCoverage}, shortcodes)
				return []deepsource.Metric{{Shortcode: "LCV"}}, nil
			},
		})

		_, out, err := svc.QualityMetrics(ctx, nil, QualityMetricsInput{
			ProjectKey: "GITHUB/acme/api-server",
			Shortcodes: []string{"LCV", "BCV"},
		})
		require.NoError(t, err)
		require.Len(t, out.Metrics, 1)
	})

	t.Run("rejects unknown shortcode", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.QualityMetrics(ctx, nil, QualityMetricsInput{
			ProjectKey: "GITHUB/acme/api-server",
			Shortcodes: []string{"NOPE"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown metric shortcode")
	})
}

// ---------------------------------------------------------------------------
// UpdateMetricThreshold / UpdateMetricSetting
// ---------------------------------------------------------------------------

func TestUpdateMetricThreshold(t *testing.T) {
	ctx := context.Background()

	t.Run("passes threshold through", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			updateMetricThreshold: func(_ context.Context, input deepsource.UpdateThresholdInput) (bool, error) {
				assert.Equal(t, deepsource.MetricLineCoverage, input.MetricShortcode)
				assert.Equal(t, "AGGREGATE", input.MetricKey)
				require.NotNil(t, input.Threshold)
				assert.Equal(t, 85, *input.Threshold)
				return true, nil
			},
		})

		_, out, err := svc.UpdateMetricThreshold(ctx, nil, UpdateMetricThresholdInput{
			ProjectKey:      "GITHUB/acme/api-server",
			MetricShortcode: "LCV",
			MetricKey:       "AGGREGATE",
			Threshold:       pagination.Int(85),
		})
		require.NoError(t, err)
		assert.True(t, out.OK)
	})

	t.Run("nil threshold means removal", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			updateMetricThreshold: func(_ context.Context, input deepsource.UpdateThresholdInput) (bool, error) {
				assert.Nil(t, input.Threshold)
				return true, nil
			},
		})

		_, out, err := svc.UpdateMetricThreshold(ctx, nil, UpdateMetricThresholdInput{
			ProjectKey:      "GITHUB/acme/api-server",
			MetricShortcode: "LCV",
			MetricKey:       "AGGREGATE",
		})
		require.NoError(t, err)
		assert.True(t, out.OK)
	})

	t.Run("requires metricKey", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.UpdateMetricThreshold(ctx, nil, UpdateMetricThresholdInput{
			ProjectKey:      "GITHUB/acme/api-server",
			MetricShortcode: "LCV",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "metricKey is required")
	})
}

func TestUpdateMetricSetting(t *testing.T) {
	ctx := context.Background()

	t.Run("passes toggles through", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			updateMetricSetting: func(_ context.Context, input deepsource.UpdateSettingInput) (bool, error) {
				assert.True(t, input.IsReported)
				assert.False(t, input.IsThresholdEnforced)
				return true, nil
			},
		})

		_, out, err := svc.UpdateMetricSetting(ctx, nil, UpdateMetricSettingInput{
			ProjectKey:      "GITHUB/acme/api-server",
			MetricShortcode: "LCV",
			IsReported:      true,
		})
		require.NoError(t, err)
		assert.True(t, out.OK)
	})

	t.Run("rejects unknown shortcode", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.UpdateMetricSetting(ctx, nil, UpdateMetricSettingInput{
			ProjectKey:      "GITHUB/acme/api-server",
			MetricShortcode: "XYZ",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown metric shortcode")
	})
}

// ---------------------------------------------------------------------------
// ComplianceReport
// ---------------------------------------------------------------------------

func TestComplianceReport(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches a known report type", func(t *testing.T) {
		svc := newTestService(&fakeAPI{
			getComplianceReport: func(_ context.Context, _ string, reportType deepsource.ReportType) (*deepsource.ComplianceReport, error) {
				assert.Equal(t, deepsource.ReportOwaspTop10, reportType)
				return &deepsource.ComplianceReport{Key: "OWASP_TOP_10", Status: "PASSING"}, nil
			},
		})

		_, out, err := svc.ComplianceReport(ctx, nil, ComplianceReportInput{
			ProjectKey: "GITHUB/acme/api-server",
			ReportType: "OWASP_TOP_10",
		})
		require.NoError(t, err)
		assert.Equal(t, "PASSING", out.Report.Status)
	})

	t.Run("rejects unknown report type", func(t *testing.T) {
		svc := newTestService(&fakeAPI{})

		_, _, err := svc.ComplianceReport(ctx, nil, ComplianceReportInput{
			ProjectKey: "GITHUB/acme/api-server",
			ReportType: "PCI_DSS",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown report type")
	})
}
