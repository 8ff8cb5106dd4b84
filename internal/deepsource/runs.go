package deepsource

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/deepsource-contrib/deepsource-mcp/internal/pagination"
)

const listRunsQuery = `
query ListRuns($login: String!, $name: String!, $provider: VCSProvider!,
               $offset: Int, $first: Int, $last: Int, $after: String, $before: String) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    analysisRuns(offset: $offset, first: $first, last: $last, after: $after, before: $before) {
      totalCount
      pageInfo {
        hasNextPage
        hasPreviousPage
        startCursor
        endCursor
      }
      edges {
        node {
          runUid
          commitOid
          branchName
          baseOid
          status
          createdAt
          finishedAt
          summary {
            occurrencesIntroduced
            occurrencesResolved
            occurrencesSuppressed
          }
          checks(first: 20) {
            edges {
              node {
                analyzer {
                  shortcode
                }
              }
            }
          }
        }
      }
    }
  }
}`

// runNode matches the analysisRuns node shape.
type runNode struct {
	RunUID     string `json:"runUid"`
	CommitOid  string `json:"commitOid"`
	BranchName string `json:"branchName"`
	BaseOid    string `json:"baseOid"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	FinishedAt string `json:"finishedAt"`
	Summary    struct {
		OccurrencesIntroduced int `json:"occurrencesIntroduced"`
		OccurrencesResolved   int `json:"occurrencesResolved"`
		OccurrencesSuppressed int `json:"occurrencesSuppressed"`
	} `json:"summary"`
	Checks connection[struct {
		Analyzer struct {
			Shortcode string `json:"shortcode"`
		} `json:"analyzer"`
	}] `json:"checks"`
}

// analyzers returns the shortcodes of the analyzers this run executed.
func (n runNode) analyzers() []string {
	out := make([]string, 0, len(n.Checks.Edges))
	for _, e := range n.Checks.Edges {
		out = append(out, e.Node.Analyzer.Shortcode)
	}
	return out
}

func (n runNode) toRun() Run {
	return Run{
		RunUID:     n.RunUID,
		CommitOid:  n.CommitOid,
		BranchName: n.BranchName,
		BaseOid:    n.BaseOid,
		Status:     n.Status,
		CreatedAt:  n.CreatedAt,
		FinishedAt: n.FinishedAt,
		Summary: RunSummary{
			OccurrencesIntroduced: n.Summary.OccurrencesIntroduced,
			OccurrencesResolved:   n.Summary.OccurrencesResolved,
			OccurrencesSuppressed: n.Summary.OccurrencesSuppressed,
		},
	}
}

// ListRuns lists a repository's analysis runs, newest first, honoring the
// caller's pagination request. The analyzer filter is applied client-side
// because the upstream run connection does not accept one; totalCount and
// pageInfo stay the upstream values, so a filtered listing can report a
// larger total than the filtered pages yield.
func (c *Client) ListRuns(ctx context.Context, projectKey string, filter RunFilter, params pagination.Params) (pagination.Response[Run], error) {
	ref, err := ParseProjectKey(projectKey)
	if err != nil {
		return pagination.Response[Run]{}, err
	}

	fetch := func(ctx context.Context, p pagination.Params) (pagination.Response[Run], error) {
		vars := map[string]any{
			"login":    ref.Login,
			"name":     ref.Name,
			"provider": ref.Provider,
		}
		paginationVars(p, vars)

		var payload struct {
			Repository struct {
				AnalysisRuns connection[runNode] `json:"analysisRuns"`
			} `json:"repository"`
		}
		if err := c.execute(ctx, "ListRuns", listRunsQuery, vars, &payload); err != nil {
			return pagination.Response[Run]{}, err
		}

		page := toResponse(payload.Repository.AnalysisRuns)
		runs := make([]Run, 0, len(page.Items))
		for _, n := range page.Items {
			if filter.Analyzer != "" && !slices.Contains(n.analyzers(), filter.Analyzer) {
				continue
			}
			runs = append(runs, n.toRun())
		}
		return pagination.Response[Run]{
			Items:      runs,
			PageInfo:   page.PageInfo,
			TotalCount: page.TotalCount,
		}, nil
	}

	return pagination.FetchAll(ctx, fetch, params)
}

const getRunQuery = `
query GetRun($runUid: UUID!) {
  run(runUid: $runUid) {
    runUid
    commitOid
    branchName
    baseOid
    status
    createdAt
    finishedAt
    summary {
      occurrencesIntroduced
      occurrencesResolved
      occurrencesSuppressed
    }
  }
}`

const getRunByCommitQuery = `
query GetRunByCommit($commitOid: String!) {
  run(commitOid: $commitOid) {
    runUid
    commitOid
    branchName
    baseOid
    status
    createdAt
    finishedAt
    summary {
      occurrencesIntroduced
      occurrencesResolved
      occurrencesSuppressed
    }
  }
}`

// GetRun fetches a single analysis run. The identifier is either the run's
// UUID or the commit OID it analyzed; anything that does not parse as a UUID
// is looked up as a commit.
func (c *Client) GetRun(ctx context.Context, runIdentifier string) (*Run, error) {
	query := getRunQuery
	vars := map[string]any{"runUid": runIdentifier}
	if uuid.Validate(runIdentifier) != nil {
		query = getRunByCommitQuery
		vars = map[string]any{"commitOid": runIdentifier}
	}

	var payload struct {
		Run *runNode `json:"run"`
	}
	if err := c.execute(ctx, "GetRun", query, vars, &payload); err != nil {
		return nil, err
	}
	if payload.Run == nil {
		return nil, fmt.Errorf("deepsource: run %s not found", runIdentifier)
	}
	run := payload.Run.toRun()
	return &run, nil
}
