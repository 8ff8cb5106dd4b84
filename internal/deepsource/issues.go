package deepsource

import (
	"context"

	"github.com/deepsource-contrib/deepsource-mcp/internal/pagination"
)

const listIssuesQuery = `
query ListIssues($login: String!, $name: String!, $provider: VCSProvider!,
                 $offset: Int, $first: Int, $last: Int, $after: String, $before: String,
                 $path: String, $analyzerShortcode: String, $tags: [String!]) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    issues(offset: $offset, first: $first, last: $last, after: $after, before: $before,
           path: $path, analyzerShortcode: $analyzerShortcode, tags: $tags) {
      totalCount
      pageInfo {
        hasNextPage
        hasPreviousPage
        startCursor
        endCursor
      }
      edges {
        node {
          issue {
            shortcode
            title
            category
            severity
            description
            tags
          }
          occurrences(first: 1) {
            edges {
              node {
                path
                beginLine
              }
            }
          }
        }
      }
    }
  }
}`

// issueNode is the raw issue edge shape before flattening.
type issueNode struct {
	Issue struct {
		Shortcode   string   `json:"shortcode"`
		Title       string   `json:"title"`
		Category    string   `json:"category"`
		Severity    string   `json:"severity"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	} `json:"issue"`
	Occurrences connection[struct {
		Path      string `json:"path"`
		BeginLine int    `json:"beginLine"`
	}] `json:"occurrences"`
}

func (n issueNode) toIssue() Issue {
	out := Issue{
		Shortcode: n.Issue.Shortcode,
		Title:     n.Issue.Title,
		Category:  n.Issue.Category,
		Severity:  n.Issue.Severity,
		IssueText: n.Issue.Description,
		Tags:      n.Issue.Tags,
	}
	if len(n.Occurrences.Edges) > 0 {
		out.FilePath = n.Occurrences.Edges[0].Node.Path
		out.BeginLine = n.Occurrences.Edges[0].Node.BeginLine
	}
	return out
}

// ListIssues lists a repository's issues, optionally filtered, honoring the
// caller's pagination request including multi-page aggregation.
func (c *Client) ListIssues(ctx context.Context, projectKey string, filter IssueFilter, params pagination.Params) (pagination.Response[Issue], error) {
	ref, err := ParseProjectKey(projectKey)
	if err != nil {
		return pagination.Response[Issue]{}, err
	}

	fetch := func(ctx context.Context, p pagination.Params) (pagination.Response[Issue], error) {
		vars := map[string]any{
			"login":    ref.Login,
			"name":     ref.Name,
			"provider": ref.Provider,
		}
		paginationVars(p, vars)
		if filter.Path != "" {
			vars["path"] = filter.Path
		}
		if filter.Analyzer != "" {
			vars["analyzerShortcode"] = filter.Analyzer
		}
		if len(filter.Tags) > 0 {
			vars["tags"] = filter.Tags
		}

		var payload struct {
			Repository struct {
				Issues connection[issueNode] `json:"issues"`
			} `json:"repository"`
		}
		if err := c.execute(ctx, "ListIssues", listIssuesQuery, vars, &payload); err != nil {
			return pagination.Response[Issue]{}, err
		}

		page := toResponse(payload.Repository.Issues)
		issues := make([]Issue, 0, len(page.Items))
		for _, n := range page.Items {
			issues = append(issues, n.toIssue())
		}
		return pagination.Response[Issue]{
			Items:      issues,
			PageInfo:   page.PageInfo,
			TotalCount: page.TotalCount,
		}, nil
	}

	return pagination.FetchAll(ctx, fetch, params)
}

const recentRunIssuesQuery = `
query RecentRunIssues($login: String!, $name: String!, $provider: VCSProvider!, $branch: String!,
                      $offset: Int, $first: Int, $last: Int, $after: String, $before: String) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    analysisRuns(branchName: $branch, first: 1) {
      edges {
        node {
          runUid
          commitOid
          branchName
          status
          checks(first: 20) {
            edges {
              node {
                occurrences(offset: $offset, first: $first, last: $last, after: $after, before: $before) {
                  totalCount
                  pageInfo {
                    hasNextPage
                    hasPreviousPage
                    startCursor
                    endCursor
                  }
                  edges {
                    node {
                      issue {
                        shortcode
                        title
                        category
                        severity
                      }
                      path
                      beginLine
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// RecentRunIssues holds the most recent run on a branch together with the
// issue occurrences it raised.
type RecentRunIssues struct {
	Run    Run                        `json:"run"`
	Issues pagination.Response[Issue] `json:"issues"`
}

// ListRecentRunIssues returns the issues of the most recent analysis run on
// the given branch.
func (c *Client) ListRecentRunIssues(ctx context.Context, projectKey, branch string, params pagination.Params) (RecentRunIssues, error) {
	ref, err := ParseProjectKey(projectKey)
	if err != nil {
		return RecentRunIssues{}, err
	}

	var run Run

	fetch := func(ctx context.Context, p pagination.Params) (pagination.Response[Issue], error) {
		vars := map[string]any{
			"login":    ref.Login,
			"name":     ref.Name,
			"provider": ref.Provider,
			"branch":   branch,
		}
		paginationVars(p, vars)

		var payload struct {
			Repository struct {
				AnalysisRuns connection[struct {
					RunUID     string `json:"runUid"`
					CommitOid  string `json:"commitOid"`
					BranchName string `json:"branchName"`
					Status     string `json:"status"`
					Checks     connection[struct {
						Occurrences connection[struct {
							Issue struct {
								Shortcode string `json:"shortcode"`
								Title     string `json:"title"`
								Category  string `json:"category"`
								Severity  string `json:"severity"`
							} `json:"issue"`
							Path      string `json:"path"`
							BeginLine int    `json:"beginLine"`
						}] `json:"occurrences"`
					}] `json:"checks"`
				}] `json:"analysisRuns"`
			} `json:"repository"`
		}
		if err := c.execute(ctx, "RecentRunIssues", recentRunIssuesQuery, vars, &payload); err != nil {
			return pagination.Response[Issue]{}, err
		}

		if len(payload.Repository.AnalysisRuns.Edges) == 0 {
			return pagination.Response[Issue]{Items: []Issue{}}, nil
		}
		node := payload.Repository.AnalysisRuns.Edges[0].Node
		run = Run{
			RunUID:     node.RunUID,
			CommitOid:  node.CommitOid,
			BranchName: node.BranchName,
			Status:     node.Status,
		}

		// Occurrences are paginated per check; merge the checks of this
		// page into one response. The continuation cursor of the last
		// check drives the multi-page walk.
		out := pagination.Response[Issue]{Items: []Issue{}}
		for _, check := range node.Checks.Edges {
			occ := toResponse(check.Node.Occurrences)
			for _, o := range occ.Items {
				out.Items = append(out.Items, Issue{
					Shortcode: o.Issue.Shortcode,
					Title:     o.Issue.Title,
					Category:  o.Issue.Category,
					Severity:  o.Issue.Severity,
					FilePath:  o.Path,
					BeginLine: o.BeginLine,
				})
			}
			out.PageInfo = occ.PageInfo
			out.TotalCount += occ.TotalCount
		}
		return out, nil
	}

	issues, err := pagination.FetchAll(ctx, fetch, params)
	if err != nil {
		return RecentRunIssues{}, err
	}
	return RecentRunIssues{Run: run, Issues: issues}, nil
}

const vulnerabilitiesQuery = `
query DependencyVulnerabilities($login: String!, $name: String!, $provider: VCSProvider!,
                                $offset: Int, $first: Int, $last: Int, $after: String, $before: String) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    dependencyVulnerabilityOccurrences(offset: $offset, first: $first, last: $last, after: $after, before: $before) {
      totalCount
      pageInfo {
        hasNextPage
        hasPreviousPage
        startCursor
        endCursor
      }
      edges {
        node {
          id
          reachability
          fixedIn
          package {
            name
            ecosystem
          }
          packageVersion {
            version
          }
          vulnerability {
            identifier
            severity
            cvssV3BaseScore
          }
        }
      }
    }
  }
}`

// ListDependencyVulnerabilities lists vulnerability occurrences in the
// repository's dependencies.
func (c *Client) ListDependencyVulnerabilities(ctx context.Context, projectKey string, params pagination.Params) (pagination.Response[Vulnerability], error) {
	ref, err := ParseProjectKey(projectKey)
	if err != nil {
		return pagination.Response[Vulnerability]{}, err
	}

	fetch := func(ctx context.Context, p pagination.Params) (pagination.Response[Vulnerability], error) {
		vars := map[string]any{
			"login":    ref.Login,
			"name":     ref.Name,
			"provider": ref.Provider,
		}
		paginationVars(p, vars)

		var payload struct {
			Repository struct {
				Occurrences connection[struct {
					ID           string `json:"id"`
					Reachability string `json:"reachability"`
					FixedIn      string `json:"fixedIn"`
					Package      struct {
						Name      string `json:"name"`
						Ecosystem string `json:"ecosystem"`
					} `json:"package"`
					PackageVersion struct {
						Version string `json:"version"`
					} `json:"packageVersion"`
					Vulnerability struct {
						Identifier      string   `json:"identifier"`
						Severity        string   `json:"severity"`
						CVSSV3BaseScore *float64 `json:"cvssV3BaseScore"`
					} `json:"vulnerability"`
				}] `json:"dependencyVulnerabilityOccurrences"`
			} `json:"repository"`
		}
		if err := c.execute(ctx, "DependencyVulnerabilities", vulnerabilitiesQuery, vars, &payload); err != nil {
			return pagination.Response[Vulnerability]{}, err
		}

		page := toResponse(payload.Repository.Occurrences)
		vulns := make([]Vulnerability, 0, len(page.Items))
		for _, n := range page.Items {
			vulns = append(vulns, Vulnerability{
				ID:             n.ID,
				Identifier:     n.Vulnerability.Identifier,
				PackageName:    n.Package.Name,
				PackageVersion: n.PackageVersion.Version,
				Ecosystem:      n.Package.Ecosystem,
				Severity:       n.Vulnerability.Severity,
				CVSSScore:      n.Vulnerability.CVSSV3BaseScore,
				Reachability:   n.Reachability,
				FixedIn:        n.FixedIn,
			})
		}
		return pagination.Response[Vulnerability]{
			Items:      vulns,
			PageInfo:   page.PageInfo,
			TotalCount: page.TotalCount,
		}, nil
	}

	return pagination.FetchAll(ctx, fetch, params)
}
