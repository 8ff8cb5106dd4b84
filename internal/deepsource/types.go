package deepsource

import (
	"fmt"
	"strings"
)

// Project is a repository DeepSource analyzes, identified by a project key
// of the form provider/login/name (e.g. GITHUB/acme/api-server).
type Project struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Login       string `json:"login"`
	IsPrivate   bool   `json:"isPrivate"`
	IsActivated bool   `json:"isActivated"`
}

// ProjectRef is a parsed project key.
type ProjectRef struct {
	Provider string
	Login    string
	Name     string
}

// ParseProjectKey splits a provider/login/name project key.
func ParseProjectKey(key string) (ProjectRef, error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ProjectRef{}, fmt.Errorf("deepsource: invalid project key %q (want provider/login/name)", key)
	}
	return ProjectRef{Provider: parts[0], Login: parts[1], Name: parts[2]}, nil
}

// Key renders the ref back into its project key form.
func (r ProjectRef) Key() string {
	return r.Provider + "/" + r.Login + "/" + r.Name
}

// Issue is a single issue occurrence in a repository.
type Issue struct {
	Shortcode string   `json:"shortcode"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Severity  string   `json:"severity"`
	Status    string   `json:"status,omitempty"`
	IssueText string   `json:"issueText,omitempty"`
	FilePath  string   `json:"filePath,omitempty"`
	BeginLine int      `json:"beginLine,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// IssueFilter narrows an issue listing. Zero values mean no filtering.
type IssueFilter struct {
	Path     string
	Analyzer string
	Tags     []string
}

// Run is one analysis run over a commit.
type Run struct {
	RunUID     string     `json:"runUid"`
	CommitOid  string     `json:"commitOid"`
	BranchName string     `json:"branchName"`
	BaseOid    string     `json:"baseOid,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  string     `json:"createdAt,omitempty"`
	FinishedAt string     `json:"finishedAt,omitempty"`
	Summary    RunSummary `json:"summary"`
}

// RunSummary aggregates occurrence movement for a run.
type RunSummary struct {
	OccurrencesIntroduced int `json:"occurrencesIntroduced"`
	OccurrencesResolved   int `json:"occurrencesResolved"`
	OccurrencesSuppressed int `json:"occurrencesSuppressed"`
}

// RunFilter narrows a run listing.
type RunFilter struct {
	Analyzer string
}

// Vulnerability is a dependency vulnerability occurrence.
type Vulnerability struct {
	ID             string   `json:"id"`
	Identifier     string   `json:"identifier"`
	PackageName    string   `json:"packageName"`
	PackageVersion string   `json:"packageVersion"`
	Ecosystem      string   `json:"ecosystem,omitempty"`
	Severity       string   `json:"severity,omitempty"`
	CVSSScore      *float64 `json:"cvssScore,omitempty"`
	Reachability   string   `json:"reachability,omitempty"`
	FixedIn        string   `json:"fixedIn,omitempty"`
}

// MetricShortcode identifies a quality metric.
type MetricShortcode string

// Quality metric shortcodes exposed by the API.
const (
	MetricLineCoverage            MetricShortcode = "LCV"
	MetricBranchCoverage          MetricShortcode = "BCV"
	MetricConditionCoverage       MetricShortcode = "CCV"
	MetricCompositeCoverage       MetricShortcode = "TCV"
	MetricCoveragePassing         MetricShortcode = "CMP"
	MetricDuplicateCodePercentage MetricShortcode = "DDP"
	MetricDocumentationCoverage   MetricShortcode = "DCV"
	MetricNewLineCoverage         MetricShortcode = "NLCV"
	MetricNewBranchCoverage       MetricShortcode = "NBCV"
	MetricStatementCoverage       MetricShortcode = "SCV"
)

// KnownMetricShortcodes lists every valid metric shortcode.
var KnownMetricShortcodes = []MetricShortcode{
	MetricLineCoverage, MetricBranchCoverage, MetricConditionCoverage,
	MetricCompositeCoverage, MetricCoveragePassing, MetricDuplicateCodePercentage,
	MetricDocumentationCoverage, MetricNewLineCoverage, MetricNewBranchCoverage,
	MetricStatementCoverage,
}

// ValidMetricShortcode reports whether s names a known metric.
func ValidMetricShortcode(s MetricShortcode) bool {
	for _, k := range KnownMetricShortcodes {
		if s == k {
			return true
		}
	}
	return false
}

// Metric is a quality metric with its per-context items.
type Metric struct {
	Name                string       `json:"name"`
	Shortcode           string       `json:"shortcode"`
	PositiveDirection   string       `json:"positiveDirection,omitempty"`
	Unit                string       `json:"unit,omitempty"`
	IsReported          bool         `json:"isReported"`
	IsThresholdEnforced bool         `json:"isThresholdEnforced"`
	Items               []MetricItem `json:"items"`
}

// MetricItem is one measured context of a metric (aggregate or per-analyzer).
type MetricItem struct {
	ID                 string   `json:"id"`
	Key                string   `json:"key"`
	Threshold          *int     `json:"threshold,omitempty"`
	LatestValue        *float64 `json:"latestValue,omitempty"`
	LatestValueDisplay string   `json:"latestValueDisplay,omitempty"`
	ThresholdStatus    string   `json:"thresholdStatus,omitempty"`
}

// UpdateThresholdInput sets or clears a metric item's threshold. A nil
// Threshold removes the threshold.
type UpdateThresholdInput struct {
	ProjectKey      string
	MetricShortcode MetricShortcode
	MetricKey       string
	Threshold       *int
}

// UpdateSettingInput toggles how a metric is handled for a repository.
type UpdateSettingInput struct {
	ProjectKey          string
	MetricShortcode     MetricShortcode
	IsReported          bool
	IsThresholdEnforced bool
}

// ReportType identifies a compliance report.
type ReportType string

// Compliance report types exposed by the API.
const (
	ReportOwaspTop10 ReportType = "OWASP_TOP_10"
	ReportSansTop25  ReportType = "SANS_TOP_25"
	ReportMisraC     ReportType = "MISRA_C"
)

// KnownReportTypes lists every valid compliance report type.
var KnownReportTypes = []ReportType{ReportOwaspTop10, ReportSansTop25, ReportMisraC}

// ValidReportType reports whether r names a known compliance report.
func ValidReportType(r ReportType) bool {
	for _, k := range KnownReportTypes {
		if r == k {
			return true
		}
	}
	return false
}

// ComplianceReport is a security compliance report for a repository.
type ComplianceReport struct {
	Key                string              `json:"key"`
	Title              string              `json:"title"`
	CurrentValue       *int                `json:"currentValue,omitempty"`
	Status             string              `json:"status,omitempty"`
	SecurityIssueStats []SecurityIssueStat `json:"securityIssueStats"`
	Trend              *ReportTrend        `json:"trend,omitempty"`
}

// SecurityIssueStat is one report category with its occurrence counts.
type SecurityIssueStat struct {
	Key        string           `json:"key"`
	Title      string           `json:"title"`
	Occurrence OccurrenceCounts `json:"occurrence"`
}

// OccurrenceCounts breaks occurrences down by severity.
type OccurrenceCounts struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Total    int `json:"total"`
}

// ReportTrend is the report's value movement over recent snapshots.
type ReportTrend struct {
	Label         string   `json:"label,omitempty"`
	Value         *int     `json:"value,omitempty"`
	ChangePercent *float64 `json:"changePercentage,omitempty"`
}
