// Package briqclient provides the primary entry point for constructing a
// Briq API client that implements the briq.Client interface.
//
// It layers configuration defaults, the pooled HTTP transport, and the
// session lifecycle on top of the resource interfaces and types defined in
// the briq package. Most applications import briqclient to build a client and
// then use Workspaces(), Campaigns() and Messages() on the result.
//
// Quick start
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
//
//	  err := briqclient.Session(ctx, &briq.Config{APIKey: "..."}, func(ctx context.Context, cli briq.Client) error {
//	    resp, err := cli.Messages().SendInstant(ctx, &briq.InstantMessage{
//	      Recipients: []string{"255700000000"},
//	      Content:    "Hello",
//	      SenderID:   "BRIQ",
//	    })
//	    if err != nil { return err }
//	    log.Println("queued", resp.MessageID)
//	    return nil
//	  })
//	  if err != nil { log.Fatal(err) }
//	}
//
// # Lifecycle
//
// New returns an unopened client. Open acquires the connection pool and Close
// releases it; a closed client cannot be reopened. Session and Run pair the
// two so the pool is released on every exit path.
//
// # Configuration from the environment
//
// LoadConfig and NewFromEnv read BRIQ_API_KEY, BRIQ_BASE_URL,
// BRIQ_TIMEOUT_SECONDS, BRIQ_MAX_CONNECTIONS, BRIQ_USER_AGENT and BRIQ_DEBUG,
// falling back to a .env file and then to briq.yaml in the working directory
// or ~/.briq.
package briqclient
