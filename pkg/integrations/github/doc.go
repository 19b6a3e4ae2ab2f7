// Package github fetches repository releases from the GitHub REST API.
//
// # Usage
//
//	store, _ := cache.NewFileStore("", cache.DefaultTTL)
//	client, err := github.NewClient(github.Options{
//	    Token: os.Getenv("GH_TOKEN"),
//	    Store: store,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	releases, err := client.FetchAll(ctx, "LiskHQ", "lisk-hub")
//
// # Pagination
//
// GitHub returns releases newest first, [PageSize] per page. [Client.FetchPages]
// walks pages 1, 2, ... sequentially and stops at the first page holding fewer
// than [PageSize] releases, so a repository with 72 releases costs exactly
// three requests.
//
// # Caching
//
// Each page's raw response body is stored under [PageKey] before it is
// parsed. While the entry is fresh (one day by default) the page is read
// from the cache and no request is made.
//
// # Authentication
//
// The token is sent as "Authorization: Bearer <token>" through an oauth2
// static token source. Acquiring the token is out of scope.
package github
