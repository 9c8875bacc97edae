// Package briq provides types, interfaces, and helpers for working with the
// Briq messaging platform API.
//
// # Overview
//
// The briq package defines the domain types (Workspace, Campaign, Message,
// MessageLog, MessageHistory), the uniform response Envelope, pagination
// types, the error taxonomy, and the interfaces of the resource clients. A
// concrete implementation is provided by the briqclient package, which wires
// configuration, transport, and the session lifecycle.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/elusion/briq-go/pkg/briq"
//	  "github.com/elusion/briq-go/pkg/briqclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  err := briqclient.Session(ctx, &briq.Config{APIKey: "..."}, func(ctx context.Context, cli briq.Client) error {
//	    page, err := cli.Workspaces().List(ctx, nil)
//	    if err != nil { return err }
//	    _ = page
//	    return nil
//	  })
//	  if err != nil { log.Fatal(err) }
//	}
//
// # Pagination
//
// List calls return a single PaginatedResponse; the client never fetches
// further pages on its own. Loop with NextPage to walk a listing:
//
//	params := &briq.WorkspaceListParams{ListParams: briq.ListParams{Page: 1, PerPage: 50}}
//	for {
//	  page, err := cli.Workspaces().List(ctx, params)
//	  if err != nil { return err }
//	  next, ok := page.NextPage()
//	  if !ok { break }
//	  params.Page = next
//	}
//
// # Errors
//
// Every failure is one of the typed errors in errors.go (NotFoundError,
// ValidationError, RateLimitError, ...). Local pre-flight validation and
// server validation share ValidationError so callers handle both the same
// way. Helpers such as IsNotFound and IsRetryable branch on common cases.
//
// # Retries and interceptors
//
// The transport sends exactly one request per call. Retry layers a backoff
// policy on top; interceptors add logging, headers, or client-side rate
// limiting around each request.
package briq
