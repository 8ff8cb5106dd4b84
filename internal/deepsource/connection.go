package deepsource

import "github.com/deepsource-contrib/deepsource-mcp/internal/pagination"

// connection mirrors the Relay connection shape DeepSource returns for
// every list field.
type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
	PageInfo   connPageInfo `json:"pageInfo"`
	TotalCount int          `json:"totalCount"`
}

type connPageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// toResponse flattens a connection's edges into a pagination response,
// preserving edge order.
func toResponse[T any](c connection[T]) pagination.Response[T] {
	items := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		items = append(items, e.Node)
	}
	info := pagination.PageInfo{
		HasNextPage:     c.PageInfo.HasNextPage,
		HasPreviousPage: c.PageInfo.HasPreviousPage,
	}
	if c.PageInfo.StartCursor != nil {
		info.StartCursor = *c.PageInfo.StartCursor
	}
	if c.PageInfo.EndCursor != nil {
		info.EndCursor = *c.PageInfo.EndCursor
	}
	return pagination.Response[T]{
		Items:      items,
		PageInfo:   info,
		TotalCount: c.TotalCount,
	}
}

// paginationVars copies the canonical pagination fields into GraphQL
// variables. Only fields present on the params are sent.
func paginationVars(p pagination.Params, vars map[string]any) {
	if p.Offset != nil {
		vars["offset"] = *p.Offset
	}
	if p.First != nil {
		vars["first"] = *p.First
	}
	if p.Last != nil {
		vars["last"] = *p.Last
	}
	if p.After != nil {
		vars["after"] = *p.After
	}
	if p.Before != nil {
		vars["before"] = *p.Before
	}
}
