package gitlab_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnectionRefused = errors.New("connection refused")

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestExecute_Success(t *testing.T) {
	t.Parallel()

	client := respondWith(http.StatusOK, `{"id": 3, "name": "gear", "extra": true}`)

	result, err := gitlab.Execute[widget](context.Background(), client, gitlab.Get("widgets/3"))
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 3, Name: "gear"}, result)
	require.Len(t, client.Calls(), 1)
}

func TestExecute_ReencodedValueDecodesIdentically(t *testing.T) {
	t.Parallel()

	description := "Main application"
	activity := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	project := gitlab.Project{
		ID:                gitlab.ProjectID(42),
		Name:              "app",
		Path:              "app",
		PathWithNamespace: "group/app",
		Description:       &description,
		Visibility:        "internal",
		WebURL:            "https://gitlab.example.com/group/app",
		CreatedAt:         time.Date(2023, 1, 2, 3, 4, 5, 600000000, time.UTC),
		LastActivityAt:    &activity,
	}

	data, err := json.Marshal(project)
	require.NoError(t, err)

	client := respondWith(http.StatusOK, string(data))

	decoded, err := gitlab.Execute[gitlab.Project](context.Background(), client, gitlab.Get("projects/42"))
	require.NoError(t, err)
	assert.Equal(t, project, decoded)

	hooksList := []gitlab.ProjectHook{
		{ID: gitlab.HookID(1), URL: "https://a", PushEvents: true, CreatedAt: time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)},
		{ID: gitlab.HookID(2), URL: "https://b", PipelineEvents: true, EnableSSLVerify: true},
	}

	data, err = json.Marshal(hooksList)
	require.NoError(t, err)

	decodedHooks, err := gitlab.Execute[[]gitlab.ProjectHook](context.Background(), respondWith(http.StatusOK, string(data)),
		gitlab.Get("projects/42/hooks"))
	require.NoError(t, err)
	assert.Equal(t, hooksList, decodedHooks)
}

func TestExecute_EmptyBodyDecodesAsNull(t *testing.T) {
	t.Parallel()

	client := respondWith(http.StatusOK, "")

	result, err := gitlab.Execute[*widget](context.Background(), client, gitlab.Get("widgets/3"))
	require.NoError(t, err)
	assert.Nil(t, result)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestExecute_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
	}{
		{
			name:            "message string",
			status:          http.StatusNotFound,
			body:            `{"message": "404 Project Not Found"}`,
			expectedMessage: "404 Project Not Found",
		},
		{
			name:            "message missing",
			status:          http.StatusBadRequest,
			body:            `{"error": "invalid_scope"}`,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
		{
			name:            "message null",
			status:          http.StatusInternalServerError,
			body:            `{"message": null}`,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
		{
			name:            "message is an object",
			status:          http.StatusBadRequest,
			body:            `{"message": {"name": ["has already been taken"]}}`,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
		{
			name:            "body is an array",
			status:          http.StatusConflict,
			body:            `["conflict"]`,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
		{
			name:            "empty body",
			status:          http.StatusForbidden,
			body:            ``,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := respondWith(tt.status, tt.body)

			_, err := gitlab.Execute[widget](context.Background(), client, gitlab.Get("widgets"))
			require.Error(t, err)
			require.ErrorIs(t, err, gitlab.ErrAPI)

			var apiErr *gitlab.GitlabError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
		})
	}
}

func TestExecute_InvalidJSON(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusOK, http.StatusBadGateway} {
		client := respondWith(status, `<html>bad gateway</html>`)

		_, err := gitlab.Execute[widget](context.Background(), client, gitlab.Get("widgets"))
		require.ErrorIs(t, err, gitlab.ErrInvalidJSON)

		var decodeErr *gitlab.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, status, decodeErr.StatusCode)
	}
}

func TestExecute_DataTypeMismatch(t *testing.T) {
	t.Parallel()

	client := respondWith(http.StatusOK, `{"id": "three"}`)

	_, err := gitlab.Execute[widget](context.Background(), client, gitlab.Get("widgets/3"))
	require.ErrorIs(t, err, gitlab.ErrDataType)

	var typeErr *gitlab.DataTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "gitlab_test.widget", typeErr.TypeName)
	assert.JSONEq(t, `{"id": "three"}`, string(typeErr.Raw))
	assert.Contains(t, err.Error(), "gitlab_test.widget")
}

func TestExecute_TransportErrorPassesThrough(t *testing.T) {
	t.Parallel()

	client := newFakeClient(func(int, *gitlab.Endpoint) (*gitlab.RawResponse, error) {
		return nil, &gitlab.TransportError{Method: http.MethodGet, URL: "https://gitlab.example.com/api/v4/user", Err: errConnectionRefused}
	})

	_, err := gitlab.Execute[gitlab.User](context.Background(), client, gitlab.Get("user"))
	require.ErrorIs(t, err, gitlab.ErrTransport)
	require.ErrorIs(t, err, errConnectionRefused)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNoAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		status          int
		body            string
		wantErr         bool
		expectedMessage string
	}{
		{name: "204 without body", status: http.StatusNoContent, body: ""},
		{name: "success with garbage body is not parsed", status: http.StatusOK, body: "not json at all"},
		{name: "success with JSON body", status: http.StatusAccepted, body: `{"id": 1}`},
		{
			name:            "failure with message",
			status:          http.StatusNotFound,
			body:            `{"message": "404 Not found"}`,
			wantErr:         true,
			expectedMessage: "404 Not found",
		},
		{
			name:            "failure with invalid JSON",
			status:          http.StatusBadGateway,
			body:            "<html></html>",
			wantErr:         true,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
		{
			name:            "failure with empty body",
			status:          http.StatusUnauthorized,
			body:            "",
			wantErr:         true,
			expectedMessage: gitlab.UnknownErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := respondWith(tt.status, tt.body)

			err := gitlab.NoAnswer(context.Background(), client, gitlab.Delete("projects/1/hooks/2"))
			if !tt.wantErr {
				require.NoError(t, err)

				return
			}

			var apiErr *gitlab.GitlabError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
		})
	}
}

func TestRaw(t *testing.T) {
	t.Parallel()

	client := respondWith(http.StatusOK, ` [1, 2, 3] `)

	raw, err := gitlab.Raw(context.Background(), client, gitlab.Get("numbers"))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(raw))
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, gitlab.IsNotFound(&gitlab.GitlabError{StatusCode: http.StatusNotFound}))
	assert.True(t, gitlab.IsUnauthorized(&gitlab.GitlabError{StatusCode: http.StatusUnauthorized}))
	assert.True(t, gitlab.IsForbidden(&gitlab.GitlabError{StatusCode: http.StatusForbidden}))
	assert.True(t, gitlab.IsServerError(&gitlab.GitlabError{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, gitlab.IsServerError(&gitlab.GitlabError{StatusCode: http.StatusBadRequest}))
	assert.False(t, gitlab.IsNotFound(errConnectionRefused))
}
