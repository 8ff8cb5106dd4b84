package mcptools

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deepsource-contrib/deepsource-mcp/internal/metrics"
)

// version is set by the linker at build time.
var version = "dev"

// NewDeepSourceMCPServer creates an MCP server with all 10 DeepSource tools
// registered.
func NewDeepSourceMCPServer(svc *DeepSourceService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "deepsource",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "projects",
		Description: "List all DeepSource projects visible to the configured API key, with their project keys.",
	}, svc.Projects)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_issues",
		Description: "List a project's issues. Supports path, analyzer, and tag filters plus cursor pagination (first/after, last/before, page_size, max_pages).",
	}, svc.ProjectIssues)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "runs",
		Description: "List a project's analysis runs with their occurrence summaries. Supports cursor pagination. The analyzer filter is applied per page; totalCount and pageInfo reflect the unfiltered upstream listing.",
	}, svc.Runs)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run",
		Description: "Fetch a single analysis run by its runUid or commitOid.",
	}, svc.Run)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recent_run_issues",
		Description: "List the issues raised by the most recent analysis run on a branch. Supports cursor pagination.",
	}, svc.RecentRunIssues)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dependency_vulnerabilities",
		Description: "List dependency vulnerability occurrences for a project, with package, version, severity, and CVSS detail. Supports cursor pagination.",
	}, svc.DependencyVulnerabilities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "quality_metrics",
		Description: "Fetch a project's quality metrics (coverage, duplication, documentation) with thresholds and latest values. Optionally filter by metric shortcodes.",
	}, svc.QualityMetrics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_metric_threshold",
		Description: "Set or remove the threshold of a quality metric item (e.g. aggregate line coverage).",
	}, svc.UpdateMetricThreshold)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_metric_setting",
		Description: "Toggle whether a quality metric is reported and whether its threshold blocks analysis.",
	}, svc.UpdateMetricSetting)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compliance_report",
		Description: "Fetch a security compliance report (OWASP_TOP_10, SANS_TOP_25, or MISRA_C) with per-category occurrence counts.",
	}, svc.ComplianceReport)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the MCP tools on / and Prometheus
// metrics on /metrics.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
