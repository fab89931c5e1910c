// Package netbox provides the REST client used to talk to a NetBox instance.
//
// The client is a thin transport layer: it knows how to build collection and
// object URLs, inject the API token, follow list pagination and decode JSON
// objects. It carries no knowledge of resource kinds or reconciliation.
//
// # Failures
//
// Every call fails with one of two typed errors:
//   - *APIError: the server answered with a non-2xx status. StatusCode and Body are preserved.
//   - *ConnectionError: the request never produced a response (DNS, TLS, timeout, refused).
//
// # Retries
//
// Only List is retried (exponential backoff, see Config.MaxRetries) because it is
// the only idempotent call. Create, Update and Delete are issued at most once.
//
// # Usage
//
//	client, err := netbox.NewClient(cfg.Netbox, logger)
//	objs, err := client.List(ctx, "dcim/platforms", map[string]string{"name": "ios"})
package netbox
