package pagination

import "context"

// PageInfo describes a page's position inside the full result set. The
// cursor values are upstream-defined opaque tokens and are never parsed.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
}

// Response is one logical page of results. Items preserve fetch order.
// TotalCount is the upstream-reported total, which can exceed len(Items)
// when an aggregated fetch was capped by its page budget.
type Response[T any] struct {
	Items      []T      `json:"items"`
	PageInfo   PageInfo `json:"pageInfo"`
	TotalCount int      `json:"totalCount"`
}

// Fetcher fetches a single page. It is an opaque capability: FetchAll does
// not know how it is implemented, only that it honors the Response shape.
type Fetcher[T any] func(ctx context.Context, params Params) (Response[T], error)

// FetchAll runs fetch once, or repeatedly when params requests more than one
// page, and merges the pages into one logical response.
//
// With MaxPages absent or <= 1 the fetcher is called exactly once with the
// normalized params and its result is returned verbatim. Otherwise FetchAll
// walks forward through the result set, advancing after to each page's
// endCursor, until the upstream reports no more data or the page budget is
// reached. The walk is strictly sequential: cursor N+1 is only known once
// page N has returned. MaxPages itself is never forwarded to the fetcher.
//
// The merged response concatenates all items in fetch order. HasNextPage is
// true only when the budget stopped the walk while upstream had more data,
// HasPreviousPage is always false, and EndCursor is set only when further
// pages remain. A fetch error on any page propagates unmodified and any
// partial progress is discarded.
func FetchAll[T any](ctx context.Context, fetch Fetcher[T], params Params) (Response[T], error) {
	p := Normalize(params)

	maxPages := 0
	if p.MaxPages != nil {
		maxPages = *p.MaxPages
	}
	p.MaxPages = nil

	if maxPages <= 1 {
		return fetch(ctx, p)
	}

	// Aggregation always walks forward, regardless of how the caller phrased
	// the initial request.
	req := Params{Offset: p.Offset, First: p.First, After: p.After}
	if req.First == nil {
		req.First = Int(DefaultAggregateSize)
	}

	var (
		items       []T
		last        Response[T]
		startCursor string
		hasMore     bool
	)

	for page := 1; ; page++ {
		resp, err := fetch(ctx, req)
		if err != nil {
			return Response[T]{}, err
		}
		last = resp
		items = append(items, resp.Items...)
		if page == 1 {
			startCursor = resp.PageInfo.StartCursor
		}

		// A missing continuation cursor means the walk cannot advance;
		// treat it like the upstream reporting no more data.
		if !resp.PageInfo.HasNextPage || resp.PageInfo.EndCursor == "" {
			hasMore = false
			break
		}
		if page == maxPages {
			hasMore = true
			break
		}

		req.After = Str(resp.PageInfo.EndCursor)
		req.Offset = nil
	}

	out := Response[T]{
		Items: items,
		PageInfo: PageInfo{
			HasNextPage:     hasMore,
			HasPreviousPage: false,
			StartCursor:     startCursor,
		},
		TotalCount: last.TotalCount,
	}
	if hasMore {
		out.PageInfo.EndCursor = last.PageInfo.EndCursor
	}
	if out.TotalCount == 0 {
		// Fallback when the last page omits its total. This undercounts if
		// earlier pages contributed more items than the final page reports;
		// kept for compatibility with the upstream API's behavior.
		out.TotalCount = len(items)
	}
	return out, nil
}
