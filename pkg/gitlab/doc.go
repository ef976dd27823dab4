// Package gitlab provides the request pipeline, pagination engine and
// supporting types for the GitLab REST API (v4).
//
// # Overview
//
// Every API call is described by an Endpoint: method, escaped path relative
// to /api/v4, ordered query parameters and an optional body. A Client
// performs one authenticated round trip for an Endpoint; pkg/glclient builds
// the concrete implementation from a Config.
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
//	  "github.com/fivetwenty-io/gitlab-client/pkg/glclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := glclient.New(ctx, &gitlab.Config{
//	    BaseURL:      "https://gitlab.example.com",
//	    PrivateToken: "glpat-...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  me, err := gitlab.Execute[gitlab.User](ctx, cli, gitlab.Get("user"))
//	  if err != nil { log.Fatal(err) }
//	  _ = me
//	}
//
// # Executing requests
//
// Execute decodes a successful response into any type. NoAnswer is used for
// endpoints whose success body is empty or irrelevant. Raw returns the
// validated JSON without decoding it. All three share one error
// classification:
//
//   - *AuthError: the credential could not be encoded as a header value.
//   - *TransportError: network, TLS or connection failure.
//   - *GitlabError: a non-2xx status; Message is the body's "message" string
//     or "unknown error".
//   - *DecodeError: the body is not JSON.
//   - *DataTypeError: the JSON does not fit the requested type.
//
// Nothing is retried. Wrap calls with Retry or ExecuteWithRetry to retry
// server errors with exponential backoff.
//
// # Pagination
//
// CollectAll fetches every page of a list endpoint:
//
//	projects, err := gitlab.CollectAll[gitlab.Project](ctx, cli, gitlab.Get("projects"))
//
// Ordering by "id" selects keyset pagination, which follows opaque cursors
// from the Link header and is stable under concurrent writes:
//
//	projects, err := gitlab.CollectAll[gitlab.Project](ctx, cli, gitlab.Get("projects"),
//	  gitlab.WithOrdering(gitlab.OrderByID, gitlab.SortAscending))
//
// Any other ordering uses page/per_page offsets. Offset results may miss or
// repeat items when the collection changes between pages. Pager, ForEach and
// StreamPages expose the same walk one page at a time.
//
// # Interceptors
//
// InterceptorChain runs functions before and after every round trip. Ready
// made interceptors cover logging, static headers, rate limiting
// (golang.org/x/time/rate), Prometheus metrics, OpenTelemetry spans and a
// circuit breaker.
package gitlab
