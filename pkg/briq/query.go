package briq

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// QueryEncoder is implemented by list parameter types.
type QueryEncoder interface {
	ToQuery() *QueryParams
}

// ListParams holds the pagination options shared by every list endpoint.
// Zero values are omitted from the request so the server defaults apply.
type ListParams struct {
	Page    int
	PerPage int
}

// ToQuery implements QueryEncoder.
func (p ListParams) ToQuery() *QueryParams {
	return NewQueryParams().WithPage(p.Page).WithPerPage(p.PerPage)
}

// QueryParams represents the query string of a list request.
type QueryParams struct {
	Page    int
	PerPage int
	Filters map[string][]string
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPerPage sets the page size.
func (q *QueryParams) WithPerPage(perPage int) *QueryParams {
	q.PerPage = perPage

	return q
}

// WithFilter adds a filter. Empty values are dropped so that omitted options
// never reach the wire.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}

		if q.Filters == nil {
			q.Filters = make(map[string][]string)
		}

		q.Filters[key] = append(q.Filters[key], value)
	}

	return q
}

// WithTime adds an RFC 3339 timestamp filter when t is set.
func (q *QueryParams) WithTime(key string, t *time.Time) *QueryParams {
	if t == nil || t.IsZero() {
		return q
	}

	return q.WithFilter(key, t.UTC().Format(time.RFC3339))
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}

	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if len(q.Filters[key]) == 0 {
			continue
		}

		values.Set(key, strings.Join(q.Filters[key], ","))
	}

	return values
}
