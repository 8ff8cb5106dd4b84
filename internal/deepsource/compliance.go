package deepsource

import (
	"context"
	"fmt"
)

const complianceReportQuery = `
query ComplianceReport($login: String!, $name: String!, $provider: VCSProvider!, $reportKey: ReportKey!) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    reports {
      report(key: $reportKey) {
        key
        title
        currentValue
        status
        securityIssueStats {
          key
          title
          occurrence {
            critical
            major
            minor
            total
          }
        }
        trends {
          label
          value
          changePercentage
        }
      }
    }
  }
}`

// GetComplianceReport fetches a security compliance report (OWASP Top 10,
// SANS Top 25, or MISRA-C) for the repository.
func (c *Client) GetComplianceReport(ctx context.Context, projectKey string, reportType ReportType) (*ComplianceReport, error) {
	ref, err := ParseProjectKey(projectKey)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"login":     ref.Login,
		"name":      ref.Name,
		"provider":  ref.Provider,
		"reportKey": reportType,
	}

	var payload struct {
		Repository struct {
			Reports struct {
				Report *struct {
					Key                string              `json:"key"`
					Title              string              `json:"title"`
					CurrentValue       *int                `json:"currentValue"`
					Status             string              `json:"status"`
					SecurityIssueStats []SecurityIssueStat `json:"securityIssueStats"`
					Trends             []ReportTrend       `json:"trends"`
				} `json:"report"`
			} `json:"reports"`
		} `json:"repository"`
	}
	if err := c.execute(ctx, "ComplianceReport", complianceReportQuery, vars, &payload); err != nil {
		return nil, err
	}

	raw := payload.Repository.Reports.Report
	if raw == nil {
		return nil, fmt.Errorf("deepsource: no %s report for %s", reportType, projectKey)
	}

	report := &ComplianceReport{
		Key:                raw.Key,
		Title:              raw.Title,
		CurrentValue:       raw.CurrentValue,
		Status:             raw.Status,
		SecurityIssueStats: raw.SecurityIssueStats,
	}
	if len(raw.Trends) > 0 {
		// Latest snapshot only; the full series is not part of the tool
		// response.
		report.Trend = &raw.Trends[len(raw.Trends)-1]
	}
	return report, nil
}
