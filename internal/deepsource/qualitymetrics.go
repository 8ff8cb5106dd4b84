package deepsource

import "context"

const qualityMetricsQuery = `
query QualityMetrics($login: String!, $name: String!, $provider: VCSProvider!, $shortcodeIn: [MetricShortcode!]) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    metrics(shortcodeIn: $shortcodeIn) {
      name
      shortcode
      positiveDirection
      unit
      isReported
      isThresholdEnforced
      items {
        id
        key
        threshold
        latestValue
        latestValueDisplay
        thresholdStatus
      }
    }
  }
}`

// GetQualityMetrics returns the repository's quality metrics, optionally
// restricted to the given shortcodes.
func (c *Client) GetQualityMetrics(ctx context.Context, projectKey string, shortcodes []MetricShortcode) ([]Metric, error) {
	ref, err := ParseProjectKey(projectKey)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"login":    ref.Login,
		"name":     ref.Name,
		"provider": ref.Provider,
	}
	if len(shortcodes) > 0 {
		vars["shortcodeIn"] = shortcodes
	}

	var payload struct {
		Repository struct {
			Metrics []Metric `json:"metrics"`
		} `json:"repository"`
	}
	if err := c.execute(ctx, "QualityMetrics", qualityMetricsQuery, vars, &payload); err != nil {
		return nil, err
	}
	return payload.Repository.Metrics, nil
}

const updateThresholdMutation = `
mutation UpdateMetricThreshold($repositoryId: ID!, $metricShortcode: MetricShortcode!, $metricKey: MetricKey!, $thresholdValue: Int) {
  updateRepositoryMetricThreshold(input: {
    repositoryId: $repositoryId,
    metricShortcode: $metricShortcode,
    metricKey: $metricKey,
    thresholdValue: $thresholdValue
  }) {
    ok
  }
}`

const updateSettingMutation = `
mutation UpdateMetricSetting($repositoryId: ID!, $metricShortcode: MetricShortcode!, $isReported: Boolean!, $isThresholdEnforced: Boolean!) {
  updateRepositoryMetricSetting(input: {
    repositoryId: $repositoryId,
    metricShortcode: $metricShortcode,
    isReported: $isReported,
    isThresholdEnforced: $isThresholdEnforced
  }) {
    ok
  }
}`

const repositoryIDQuery = `
query RepositoryID($login: String!, $name: String!, $provider: VCSProvider!) {
  repository(login: $login, name: $name, vcsProvider: $provider) {
    id
  }
}`

// repositoryID resolves a project key to the repository's GraphQL node ID,
// which the metric mutations require.
func (c *Client) repositoryID(ctx context.Context, ref ProjectRef) (string, error) {
	vars := map[string]any{
		"login":    ref.Login,
		"name":     ref.Name,
		"provider": ref.Provider,
	}
	var payload struct {
		Repository struct {
			ID string `json:"id"`
		} `json:"repository"`
	}
	if err := c.execute(ctx, "RepositoryID", repositoryIDQuery, vars, &payload); err != nil {
		return "", err
	}
	return payload.Repository.ID, nil
}

// UpdateMetricThreshold sets or clears the threshold of one metric item.
func (c *Client) UpdateMetricThreshold(ctx context.Context, input UpdateThresholdInput) (bool, error) {
	ref, err := ParseProjectKey(input.ProjectKey)
	if err != nil {
		return false, err
	}
	repoID, err := c.repositoryID(ctx, ref)
	if err != nil {
		return false, err
	}

	vars := map[string]any{
		"repositoryId":    repoID,
		"metricShortcode": input.MetricShortcode,
		"metricKey":       input.MetricKey,
	}
	if input.Threshold != nil {
		vars["thresholdValue"] = *input.Threshold
	}

	var payload struct {
		UpdateRepositoryMetricThreshold struct {
			OK bool `json:"ok"`
		} `json:"updateRepositoryMetricThreshold"`
	}
	if err := c.execute(ctx, "UpdateMetricThreshold", updateThresholdMutation, vars, &payload); err != nil {
		return false, err
	}
	return payload.UpdateRepositoryMetricThreshold.OK, nil
}

// UpdateMetricSetting toggles reporting and threshold enforcement for a
// metric on the repository.
func (c *Client) UpdateMetricSetting(ctx context.Context, input UpdateSettingInput) (bool, error) {
	ref, err := ParseProjectKey(input.ProjectKey)
	if err != nil {
		return false, err
	}
	repoID, err := c.repositoryID(ctx, ref)
	if err != nil {
		return false, err
	}

	vars := map[string]any{
		"repositoryId":        repoID,
		"metricShortcode":     input.MetricShortcode,
		"isReported":          input.IsReported,
		"isThresholdEnforced": input.IsThresholdEnforced,
	}

	var payload struct {
		UpdateRepositoryMetricSetting struct {
			OK bool `json:"ok"`
		} `json:"updateRepositoryMetricSetting"`
	}
	if err := c.execute(ctx, "UpdateMetricSetting", updateSettingMutation, vars, &payload); err != nil {
		return false, err
	}
	return payload.UpdateRepositoryMetricSetting.OK, nil
}
