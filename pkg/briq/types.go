package briq

import (
	"strconv"
	"time"
)

// Resource represents the base structure for all Briq API resources.
type Resource struct {
	ID        string    `json:"id"         yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Validate implements Validatable. A resource returned by the API must carry
// its server-assigned identifier.
func (r *Resource) Validate() []ErrorDetail {
	if r.ID == "" {
		return []ErrorDetail{{Field: "id", Message: "id is required", Code: "required"}}
	}

	return nil
}

// Validatable is implemented by read models that check their own shape after
// decoding.
type Validatable interface {
	Validate() []ErrorDetail
}

// Envelope is the uniform wrapper around every API response body.
type Envelope[T any] struct {
	Success bool          `json:"success"          yaml:"success"`
	Message string        `json:"message"          yaml:"message"`
	Data    T             `json:"data"             yaml:"data"`
	Errors  []ErrorDetail `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// PaginationInfo describes the position of a page within a list.
type PaginationInfo struct {
	Page        int  `json:"page"         yaml:"page"`
	PerPage     int  `json:"per_page"     yaml:"per_page"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
}

// NewPaginationInfo computes a consistent PaginationInfo. Page and perPage
// below 1 are raised to 1 and a negative total is treated as zero.
func NewPaginationInfo(page, perPage, totalItems int) PaginationInfo {
	if page < 1 {
		page = 1
	}

	if perPage < 1 {
		perPage = 1
	}

	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + perPage - 1) / perPage

	return PaginationInfo{
		Page:        page,
		PerPage:     perPage,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Consistent reports whether the derived fields agree with page, per_page and
// total_items.
func (p PaginationInfo) Consistent() bool {
	if p.Page < 1 || p.PerPage < 1 || p.TotalItems < 0 {
		return false
	}

	return p == NewPaginationInfo(p.Page, p.PerPage, p.TotalItems)
}

// PaginatedResponse is the data of a list envelope.
type PaginatedResponse[T any] struct {
	Items      []T            `json:"items"      yaml:"items"`
	Pagination PaginationInfo `json:"pagination" yaml:"pagination"`
}

// NextPage returns the page number to request next and whether there is one.
func (p *PaginatedResponse[T]) NextPage() (int, bool) {
	if !p.Pagination.HasNext {
		return 0, false
	}

	return p.Pagination.Page + 1, true
}

// Validate implements Validatable by validating every item independently.
// Field paths are prefixed with the item index.
func (p *PaginatedResponse[T]) Validate() []ErrorDetail {
	var details []ErrorDetail

	for i := range p.Items {
		item, ok := any(&p.Items[i]).(Validatable)
		if !ok {
			continue
		}

		for _, detail := range item.Validate() {
			detail.Field = "items." + strconv.Itoa(i) + "." + detail.Field
			details = append(details, detail)
		}
	}

	return details
}

// ConnectionStatus is the result of a connectivity probe.
type ConnectionStatus struct {
	Connected  bool          `json:"connected"             yaml:"connected"`
	StatusCode int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"               yaml:"latency"`
	Message    string        `json:"message,omitempty"     yaml:"message,omitempty"`
}
