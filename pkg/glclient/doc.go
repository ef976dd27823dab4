// Package glclient provides the primary entry point for constructing a
// GitLab REST API (v4) client that implements the gitlab.Client interface.
//
// It layers configuration validation, HTTP transport and authentication on
// top of the request pipeline defined in the gitlab package.
//
// Quick start
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
//
//	  // Personal, project or group access token.
//	  cli, err := glclient.NewWithToken(ctx, "gitlab.example.com", "glpat-...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or an OAuth2 token, sent as a bearer authorization.
//	  cli, err = glclient.NewWithOAuth2Token(ctx, "https://gitlab.example.com", "...")
//
//	  // Or the full configuration.
//	  cli, err = glclient.New(ctx, &gitlab.Config{
//	    BaseURL:  "https://gitlab.example.com/api/v4",
//	    Username: "alice",
//	    Password: "...",
//	    RetryMax: 3,
//	  })
//
//	  projects, err := gitlab.NewProjectsService(cli).List(ctx, nil)
//	  _ = projects
//	}
//
// Base URLs are normalized: a missing scheme becomes https://, and a trailing
// slash or /api/v4 suffix is removed.
package glclient
