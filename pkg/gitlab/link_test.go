package gitlab_test

import (
	"net/http"
	"testing"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkHeader(t *testing.T) {
	t.Parallel()

	links := gitlab.ParseLinkHeader(
		`<https://gitlab.example.com/api/v4/projects?id_after=42&order_by=id,name&per_page=20>; rel="next", ` +
			`<https://gitlab.example.com/api/v4/projects?page=1>; rel="first prev", garbage; rel="last"`)

	require.Len(t, links, 2)
	assert.Equal(t, "https://gitlab.example.com/api/v4/projects?id_after=42&order_by=id,name&per_page=20", links[0].URL)
	assert.True(t, links[0].HasRel("next"))
	assert.True(t, links[1].HasRel("first"))
	assert.True(t, links[1].HasRel("PREV"))
	assert.False(t, links[1].HasRel("next"))
}

func TestNextLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   http.Header
		expected string
		found    bool
	}{
		{
			name:     "link header",
			header:   http.Header{"Link": {`<https://h/a?cursor=x>; rel="next"`}},
			expected: "https://h/a?cursor=x",
			found:    true,
		},
		{
			name:     "links header",
			header:   http.Header{"Links": {`<https://h/a?cursor=y>; rel="next"`}},
			expected: "https://h/a?cursor=y",
			found:    true,
		},
		{
			name:   "only first and last",
			header: http.Header{"Link": {`<https://h/a?page=1>; rel="first", <https://h/a?page=3>; rel="last"`}},
		},
		{
			name:   "no header",
			header: http.Header{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next, found := gitlab.NextLink(tt.header)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.expected, next)
		})
	}
}
