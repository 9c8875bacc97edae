package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/internal/validation"
	"github.com/elusion/briq-go/pkg/briq"
)

// ResourceClient provides the CRUD operations shared by every entity
// endpoint. T is the read model, C the create input and U the update input.
type ResourceClient[T any, C any, U any] struct {
	httpClient   *briqhttp.Client
	resourcePath string
	// plural labels operations ("workspaces.get"), singular labels errors.
	plural       string
	singular     string
	createSchema validation.Schema
	updateSchema validation.Schema
}

// NewResourceClient creates a new generic resource client.
func NewResourceClient[T any, C any, U any](
	httpClient *briqhttp.Client,
	resourcePath, singular string,
	createSchema, updateSchema validation.Schema,
) *ResourceClient[T, C, U] {
	return &ResourceClient[T, C, U]{
		httpClient:   httpClient,
		resourcePath: resourcePath,
		plural:       strings.TrimPrefix(resourcePath, "/"),
		singular:     singular,
		createSchema: createSchema,
		updateSchema: updateSchema,
	}
}

func (c *ResourceClient[T, C, U]) operation(name string) string {
	return c.plural + "." + name
}

func (c *ResourceClient[T, C, U]) itemPath(id string) string {
	return c.resourcePath + "/" + url.PathEscape(id)
}

// Create validates input and creates a new entity.
func (c *ResourceClient[T, C, U]) Create(ctx context.Context, input *C) (*T, error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.singular, err)
	}

	if input == nil {
		return nil, &briq.InvalidArgumentError{Argument: "input", Message: c.singular + " input is required"}
	}

	err = validation.Validate(c.createSchema, input)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.singular, err)
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodPost,
		Path:      c.resourcePath,
		Body:      input,
		Operation: c.operation("create"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.singular, err)
	}

	created, err := briqhttp.Decode[T](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.singular, err)
	}

	return created, nil
}

// List retrieves one page of entities. A nil query lists with server defaults.
func (c *ResourceClient[T, C, U]) List(ctx context.Context, query url.Values) (*briq.PaginatedResponse[T], error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.plural, err)
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodGet,
		Path:      c.resourcePath,
		Query:     query,
		Operation: c.operation("list"),
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.plural, err)
	}

	page, err := briqhttp.Decode[briq.PaginatedResponse[T]](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", c.singular, err)
	}

	return page, nil
}

// Get retrieves one entity by id.
func (c *ResourceClient[T, C, U]) Get(ctx context.Context, id string) (*T, error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", c.singular, err)
	}

	err = requireID(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodGet,
		Path:      c.itemPath(id),
		Operation: c.operation("get"),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", c.singular, err)
	}

	item, err := briqhttp.Decode[T](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.singular, err)
	}

	return item, nil
}

// Update applies a partial update. Nil fields in input are left unchanged.
func (c *ResourceClient[T, C, U]) Update(ctx context.Context, id string, input *U) (*T, error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.singular, err)
	}

	err = requireID(id)
	if err != nil {
		return nil, err
	}

	if input == nil {
		return nil, &briq.InvalidArgumentError{Argument: "input", Message: c.singular + " update is required"}
	}

	err = validation.Validate(c.updateSchema, input)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.singular, err)
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodPut,
		Path:      c.itemPath(id),
		Body:      input,
		Operation: c.operation("update"),
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.singular, err)
	}

	updated, err := briqhttp.Decode[T](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.singular, err)
	}

	return updated, nil
}

// Delete removes an entity. Any data in the response is ignored.
func (c *ResourceClient[T, C, U]) Delete(ctx context.Context, id string) error {
	err := requireOpen(c.httpClient)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", c.singular, err)
	}

	err = requireID(id)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodDelete,
		Path:      c.itemPath(id),
		Operation: c.operation("delete"),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", c.singular, err)
	}

	return nil
}

// requireOpen fails with briq.ErrSessionClosed unless the session is open.
// It runs before any argument or input check.
func requireOpen(httpClient *briqhttp.Client) error {
	if httpClient.State() != briq.SessionOpen {
		return briq.ErrSessionClosed
	}

	return nil
}

// requireID rejects identifiers that are empty after trimming whitespace.
func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &briq.InvalidArgumentError{Argument: "id", Message: "id must not be empty"}
	}

	return nil
}

// queryOf converts list parameters to url.Values.
func queryOf(params briq.QueryEncoder) url.Values {
	return params.ToQuery().ToValues()
}
