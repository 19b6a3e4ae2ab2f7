// Package integrations provides the shared HTTP plumbing for remote API clients.
//
// # Overview
//
// The [Client] type issues single GET requests with default headers,
// classifies non-2xx responses into coded errors (see [pkg/errors]) and
// optionally keeps raw response bodies in a [cache.Store]:
//
//	store, _ := cache.NewFileStore("/tmp", cache.DefaultTTL)
//	client := integrations.NewClient(integrations.NewAuthHTTPClient(token, 0), store, headers)
//	body, hit, err := client.Cached(ctx, "repo-downloads-1.json", false, func() ([]byte, error) {
//	    return client.GetBytes(ctx, url)
//	})
//
// Requests are never retried: a failed request is returned to the caller,
// which aborts the run.
//
// # Subpackages
//
//   - [github]: GitHub releases API
//
// [github]: github.com/matzehuels/releasestats/pkg/integrations/github
// [pkg/errors]: github.com/matzehuels/releasestats/pkg/errors
// [cache.Store]: github.com/matzehuels/releasestats/pkg/cache.Store
package integrations
