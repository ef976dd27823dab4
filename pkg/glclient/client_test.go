package glclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/fivetwenty-io/gitlab-client/pkg/glclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"gitlab.example.com", "https://gitlab.example.com"},
		{"https://gitlab.example.com/", "https://gitlab.example.com"},
		{"https://gitlab.example.com/api/v4", "https://gitlab.example.com"},
		{"https://gitlab.example.com/api/v4/", "https://gitlab.example.com"},
		{"http://localhost:8080/gitlab", "http://localhost:8080/gitlab"},
		{"  https://gitlab.example.com  ", "https://gitlab.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, glclient.NormalizeBaseURL(tt.input))
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := glclient.New(context.Background(), nil)
		require.ErrorIs(t, err, gitlab.ErrConfigRequired)
	})

	t.Run("missing base URL", func(t *testing.T) {
		t.Parallel()

		_, err := glclient.New(context.Background(), &gitlab.Config{PrivateToken: "glpat-x"})
		require.ErrorIs(t, err, gitlab.ErrBaseURLRequired)
	})

	t.Run("missing credential", func(t *testing.T) {
		t.Parallel()

		_, err := glclient.New(context.Background(), &gitlab.Config{BaseURL: "gitlab.example.com"})
		require.ErrorIs(t, err, gitlab.ErrCredentialRequired)
	})

	t.Run("conflicting credentials", func(t *testing.T) {
		t.Parallel()

		_, err := glclient.New(context.Background(), &gitlab.Config{
			BaseURL:      "gitlab.example.com",
			PrivateToken: "glpat-x",
			OAuth2Token:  "oauth-x",
		})
		require.ErrorIs(t, err, glclient.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "PrivateToken")
	})

	t.Run("username without password", func(t *testing.T) {
		t.Parallel()

		_, err := glclient.New(context.Background(), &gitlab.Config{
			BaseURL:  "gitlab.example.com",
			Username: "alice",
		})
		require.ErrorIs(t, err, glclient.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "Password")
	})

	t.Run("negative retry count", func(t *testing.T) {
		t.Parallel()

		_, err := glclient.New(context.Background(), &gitlab.Config{
			BaseURL:      "gitlab.example.com",
			PrivateToken: "glpat-x",
			RetryMax:     -1,
		})
		require.ErrorIs(t, err, glclient.ErrInvalidConfig)
	})

	t.Run("normalizes base URL", func(t *testing.T) {
		t.Parallel()

		config := &gitlab.Config{
			BaseURL:      "gitlab.example.com/api/v4/",
			PrivateToken: "glpat-x",
		}

		client, err := glclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://gitlab.example.com", client.BaseURL())
		assert.Equal(t, "https://gitlab.example.com", config.BaseURL)
	})
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/v4/user", request.URL.Path)
		assert.Equal(t, "glpat-x", request.Header.Get("PRIVATE-TOKEN"))
		_, _ = writer.Write([]byte(`{"id":1,"username":"root"}`))
	}))
	defer server.Close()

	client, err := glclient.NewWithToken(context.Background(), server.URL+"/api/v4", "glpat-x")
	require.NoError(t, err)

	user, err := gitlab.NewUsersService(client).Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "root", user.Username)
}

func TestNewWithOAuth2Token(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer oauth-x", request.Header.Get("Authorization"))
		assert.Empty(t, request.Header.Get("PRIVATE-TOKEN"))
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := glclient.NewWithOAuth2Token(context.Background(), server.URL, "oauth-x")
	require.NoError(t, err)

	err = gitlab.NoAnswer(context.Background(), client, gitlab.Delete("projects/1/hooks/2"))
	require.NoError(t, err)
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/oauth/token":
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"access_token":"granted","token_type":"Bearer"}`))
		case "/api/v4/user":
			assert.Equal(t, "Bearer granted", request.Header.Get("Authorization"))
			_, _ = writer.Write([]byte(`{"id":2,"username":"alice"}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := glclient.NewWithPassword(context.Background(), server.URL, "alice", "secret")
	require.NoError(t, err)

	user, err := gitlab.NewUsersService(client).Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gitlab.UserID(2), user.ID)
}
