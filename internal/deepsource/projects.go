package deepsource

import "context"

const listProjectsQuery = `
query ListProjects {
  viewer {
    email
    accounts {
      edges {
        node {
          login
          vcsProvider
          repositories(first: 100) {
            edges {
              node {
                name
                defaultBranch
                dsn
                isPrivate
                isActivated
              }
            }
          }
        }
      }
    }
  }
}`

// ListProjects returns every repository visible to the authenticated user,
// across all their accounts.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var payload struct {
		Viewer struct {
			Accounts connection[struct {
				Login        string `json:"login"`
				VCSProvider  string `json:"vcsProvider"`
				Repositories connection[struct {
					Name        string `json:"name"`
					IsPrivate   bool   `json:"isPrivate"`
					IsActivated bool   `json:"isActivated"`
				}] `json:"repositories"`
			}] `json:"accounts"`
		} `json:"viewer"`
	}

	if err := c.execute(ctx, "ListProjects", listProjectsQuery, nil, &payload); err != nil {
		return nil, err
	}

	var projects []Project
	for _, acct := range payload.Viewer.Accounts.Edges {
		for _, repo := range acct.Node.Repositories.Edges {
			ref := ProjectRef{
				Provider: acct.Node.VCSProvider,
				Login:    acct.Node.Login,
				Name:     repo.Node.Name,
			}
			projects = append(projects, Project{
				Key:         ref.Key(),
				Name:        repo.Node.Name,
				Provider:    acct.Node.VCSProvider,
				Login:       acct.Node.Login,
				IsPrivate:   repo.Node.IsPrivate,
				IsActivated: repo.Node.IsActivated,
			})
		}
	}
	return projects, nil
}
