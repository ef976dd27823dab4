package hooks_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/fivetwenty-io/gitlab-client/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pushPayload = `{
  "object_kind": "push",
  "event_name": "push",
  "before": "95790bf891e76fee5e1747ab589903a6a1f80f22",
  "after": "da1560886d4f094c3e6c9ef40349f7d38b5d27d7",
  "ref": "refs/heads/master",
  "checkout_sha": "da1560886d4f094c3e6c9ef40349f7d38b5d27d7",
  "user_id": 4,
  "user_name": "John Smith",
  "user_username": "jsmith",
  "project_id": 15,
  "project": {
    "id": 15,
    "name": "Diaspora",
    "path_with_namespace": "mike/diaspora",
    "default_branch": "master"
  },
  "commits": [
    {
      "id": "b6568db1bc1dcd7f8b4d5a946b0b91f9dacd7327",
      "message": "Update Catalan translation to e38cb41.",
      "timestamp": "2011-12-12T14:27:31+02:00",
      "author": {"name": "Jordi Mallach", "email": "jordi@softcatala.org"},
      "added": ["CHANGELOG"],
      "modified": ["app/controller/application.rb"],
      "removed": []
    }
  ],
  "total_commits_count": 1
}`

func TestClassifyAndDecode_WebHooks(t *testing.T) { //nolint:funlen
	t.Parallel()

	t.Run("push", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(pushPayload))
		require.NoError(t, err)

		push, ok := event.(*hooks.PushEvent)
		require.True(t, ok, "expected *PushEvent, got %T", event)

		assert.Equal(t, hooks.FamilyWeb, push.Family())
		assert.Equal(t, "push", push.Kind())
		assert.Equal(t, "refs/heads/master", push.Ref)
		assert.Equal(t, gitlab.ProjectID(15), push.ProjectID)
		assert.Equal(t, gitlab.UserID(4), push.UserID)
		assert.Equal(t, "mike/diaspora", push.Project.PathWithNamespace)
		assert.False(t, push.IsTag())
		require.Len(t, push.Commits, 1)
		assert.True(t, time.Date(2011, 12, 12, 12, 27, 31, 0, time.UTC).Equal(push.Commits[0].Timestamp.Time))
	})

	t.Run("tag push", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "tag_push",
			"ref": "refs/tags/v1.0.0",
			"project_id": 1
		}`))
		require.NoError(t, err)

		push, ok := event.(*hooks.PushEvent)
		require.True(t, ok)
		assert.Equal(t, "tag_push", push.Kind())
		assert.True(t, push.IsTag())
	})

	t.Run("issue", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "issue",
			"event_type": "issue",
			"user": {"id": 1, "name": "Administrator", "username": "root"},
			"project": {"id": 1, "name": "Gitlab Test"},
			"object_attributes": {
				"id": 301,
				"iid": 23,
				"title": "New API: create/update/delete file",
				"state": "opened",
				"action": "open",
				"assignee_ids": [51],
				"created_at": "2013-12-03T17:23:34Z",
				"updated_at": "2013-12-03 17:23:34 UTC"
			},
			"labels": [{"id": 206, "title": "API", "color": "#ffffff"}],
			"changes": {"title": {"previous": null, "current": "New API"}}
		}`))
		require.NoError(t, err)

		issue, ok := event.(*hooks.IssueEvent)
		require.True(t, ok)
		assert.Equal(t, gitlab.IssueID(301), issue.ObjectAttributes.ID)
		assert.Equal(t, 23, issue.ObjectAttributes.IID)
		assert.Equal(t, []gitlab.UserID{51}, issue.ObjectAttributes.AssigneeIDs)
		assert.True(t, issue.ObjectAttributes.CreatedAt.Equal(issue.ObjectAttributes.UpdatedAt.Time))
		assert.Nil(t, issue.ObjectAttributes.ClosedAt)
		require.Len(t, issue.Labels, 1)
		assert.Equal(t, gitlab.LabelID(206), issue.Labels[0].ID)
		assert.Contains(t, issue.Changes, "title")
	})

	t.Run("merge request with string merge params", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "merge_request",
			"user": {"id": 1, "username": "root"},
			"object_attributes": {
				"id": 99,
				"iid": 1,
				"source_branch": "ms-viewport",
				"target_branch": "master",
				"state": "opened",
				"action": "open",
				"merge_params": {"force_remove_source_branch": "1"},
				"created_at": "2013-12-03 17:23:34 +0200"
			}
		}`))
		require.NoError(t, err)

		mr, ok := event.(*hooks.MergeRequestEvent)
		require.True(t, ok)
		assert.Equal(t, gitlab.MergeRequestID(99), mr.ObjectAttributes.ID)
		assert.True(t, bool(mr.ObjectAttributes.MergeParams.ForceRemoveSourceBranch))
		assert.True(t, time.Date(2013, 12, 3, 15, 23, 34, 0, time.UTC).Equal(mr.ObjectAttributes.CreatedAt.Time))
	})

	t.Run("note on commit", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "note",
			"project_id": 5,
			"object_attributes": {
				"id": 1243,
				"note": "This is a commit comment.",
				"noteable_type": "Commit",
				"noteable_id": "cfe32cf61b73a0d5e9f13e774abde7ff789b1660"
			},
			"commit": {"id": "cfe32cf61b73a0d5e9f13e774abde7ff789b1660", "message": "Add submodule"}
		}`))
		require.NoError(t, err)

		note, ok := event.(*hooks.NoteEvent)
		require.True(t, ok)

		sha, ok := note.ObjectAttributes.NoteableSHA()
		require.True(t, ok)
		assert.Equal(t, "cfe32cf61b73a0d5e9f13e774abde7ff789b1660", sha)

		_, ok = note.ObjectAttributes.NoteableNumericID()
		assert.False(t, ok)
		require.NotNil(t, note.Commit)
		assert.Nil(t, note.Issue)
	})

	t.Run("note on merge request", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "note",
			"object_attributes": {"id": 1244, "noteable_type": "MergeRequest", "noteable_id": 7},
			"merge_request": {"id": 7, "iid": 1}
		}`))
		require.NoError(t, err)

		note, ok := event.(*hooks.NoteEvent)
		require.True(t, ok)

		id, ok := note.ObjectAttributes.NoteableNumericID()
		require.True(t, ok)
		assert.Equal(t, uint64(7), id)
		require.NotNil(t, note.MergeRequest)
		assert.Equal(t, gitlab.MergeRequestID(7), note.MergeRequest.ID)
	})

	t.Run("build", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "build",
			"ref": "gitlab-script-trigger",
			"build_id": 1977,
			"build_name": "test",
			"build_status": "created",
			"build_started_at": null,
			"build_duration": null,
			"project_id": 380,
			"commit": {"id": 2366, "sha": "2293ada6b400935a1378653304eaf6221e0fdb8f", "status": "created"}
		}`))
		require.NoError(t, err)

		build, ok := event.(*hooks.BuildEvent)
		require.True(t, ok)
		assert.Equal(t, gitlab.JobID(1977), build.BuildID)
		assert.Equal(t, gitlab.PipelineID(2366), build.Commit.ID)
		assert.Nil(t, build.BuildStartedAt)
		assert.Nil(t, build.BuildDuration)
	})

	t.Run("pipeline", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "pipeline",
			"object_attributes": {
				"id": 31,
				"ref": "master",
				"status": "success",
				"stages": ["build", "test", "deploy"],
				"variables": [{"key": "NESTOR_PROD_ENVIRONMENT", "value": "us-west-1"}],
				"created_at": "2016-08-12 15:23:28 UTC",
				"finished_at": "2016-08-12 15:26:29 UTC"
			},
			"builds": [{"id": 380, "stage": "deploy", "name": "production", "status": "skipped"}]
		}`))
		require.NoError(t, err)

		pipeline, ok := event.(*hooks.PipelineEvent)
		require.True(t, ok)
		assert.Equal(t, gitlab.PipelineID(31), pipeline.ObjectAttributes.ID)
		assert.Equal(t, []string{"build", "test", "deploy"}, pipeline.ObjectAttributes.Stages)
		require.NotNil(t, pipeline.ObjectAttributes.FinishedAt)
		assert.Equal(t, 3*time.Minute+time.Second,
			pipeline.ObjectAttributes.FinishedAt.Sub(pipeline.ObjectAttributes.CreatedAt.Time))
		require.Len(t, pipeline.Builds, 1)
		assert.Equal(t, gitlab.JobID(380), pipeline.Builds[0].ID)
	})

	t.Run("wiki page", func(t *testing.T) {
		t.Parallel()

		event, err := hooks.ClassifyAndDecode([]byte(`{
			"object_kind": "wiki_page",
			"wiki": {"web_url": "http://example.com/root/awesome-project/wikis/home"},
			"object_attributes": {"title": "Awesome", "slug": "awesome", "action": "create"}
		}`))
		require.NoError(t, err)

		wiki, ok := event.(*hooks.WikiPageEvent)
		require.True(t, ok)
		assert.Equal(t, "awesome", wiki.ObjectAttributes.Slug)
		assert.Equal(t, "create", wiki.ObjectAttributes.Action)
	})
}

func TestClassifyAndDecode_SystemHooks(t *testing.T) { //nolint:funlen
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, event hooks.Event)
	}{
		{
			name: "project create",
			payload: `{"event_name": "project_create", "created_at": "2012-07-21T07:30:54Z",
				"name": "StoreCloud", "path": "storecloud", "path_with_namespace": "jsmith/storecloud",
				"project_id": 74, "owner_name": "John Smith", "project_visibility": "private"}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				project, ok := event.(*hooks.ProjectSystemEvent)
				require.True(t, ok)
				assert.Equal(t, gitlab.ProjectID(74), project.ProjectID)
				require.NotNil(t, project.CreatedAt)
				assert.Equal(t, 2012, project.CreatedAt.Year())
				assert.Nil(t, project.OldPathWithNamespace)
			},
		},
		{
			name: "project rename",
			payload: `{"event_name": "project_rename", "name": "Underscore", "project_id": 73,
				"path_with_namespace": "jsmith/underscore", "old_path_with_namespace": "jsmith/overscore"}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				project, ok := event.(*hooks.ProjectSystemEvent)
				require.True(t, ok)
				require.NotNil(t, project.OldPathWithNamespace)
				assert.Equal(t, "jsmith/overscore", *project.OldPathWithNamespace)
			},
		},
		{
			name: "project member",
			payload: `{"event_name": "user_add_to_team", "access_level": "Master", "project_id": 74,
				"project_path_with_namespace": "jsmith/storecloud", "user_id": 41, "user_username": "johnsmith"}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				member, ok := event.(*hooks.ProjectMemberSystemEvent)
				require.True(t, ok)
				assert.Equal(t, gitlab.UserID(41), member.UserID)

				level, ok := member.Level()
				require.True(t, ok)
				assert.Equal(t, gitlab.AccessLevelMaintainer, level)
			},
		},
		{
			name:    "user rename",
			payload: `{"event_name": "user_rename", "name": "new-name", "user_id": 42, "username": "new", "old_username": "old"}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				user, ok := event.(*hooks.UserSystemEvent)
				require.True(t, ok)
				assert.Equal(t, gitlab.UserID(42), user.UserID)
				require.NotNil(t, user.OldUsername)
				assert.Equal(t, "old", *user.OldUsername)
			},
		},
		{
			name:    "key create",
			payload: `{"event_name": "key_create", "username": "root", "key": "ssh-rsa AAAA", "id": 4}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				key, ok := event.(*hooks.KeySystemEvent)
				require.True(t, ok)
				assert.Equal(t, gitlab.SSHKeyID(4), key.ID)
			},
		},
		{
			name:    "group create",
			payload: `{"event_name": "group_create", "name": "StoreCloud", "path": "storecloud", "group_id": 78}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				group, ok := event.(*hooks.GroupSystemEvent)
				require.True(t, ok)
				assert.Equal(t, gitlab.GroupID(78), group.GroupID)
			},
		},
		{
			name: "group member",
			payload: `{"event_name": "user_update_for_group", "group_access": "Developer", "group_id": 78,
				"user_id": 41, "user_username": "johnsmith"}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				member, ok := event.(*hooks.GroupMemberSystemEvent)
				require.True(t, ok)

				level, ok := member.Level()
				require.True(t, ok)
				assert.Equal(t, gitlab.AccessLevelDeveloper, level)
			},
		},
		{
			name: "system push",
			payload: `{"event_name": "push", "ref": "refs/heads/master", "project_id": 15,
				"user_id": 4, "commits": [], "total_commits_count": 0}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				push, ok := event.(*hooks.PushSystemEvent)
				require.True(t, ok)
				assert.Equal(t, "refs/heads/master", push.Ref)
			},
		},
		{
			name: "repository update",
			payload: `{"event_name": "repository_update", "user_id": 1, "project_id": 1,
				"changes": [{"before": "8205ea8d", "after": "4045ea7a", "ref": "refs/heads/master"}],
				"refs": ["refs/heads/master"]}`,
			check: func(t *testing.T, event hooks.Event) {
				t.Helper()

				update, ok := event.(*hooks.RepositoryUpdateSystemEvent)
				require.True(t, ok)
				require.Len(t, update.Changes, 1)
				assert.Equal(t, "refs/heads/master", update.Changes[0].Ref)
				assert.Equal(t, []string{"refs/heads/master"}, update.Refs)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := hooks.ClassifyAndDecode([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, hooks.FamilySystem, event.Family())
			tt.check(t, event)
		})
	}
}

func TestClassifyAndDecode_ObjectKindTakesPriority(t *testing.T) {
	t.Parallel()

	// A web push carries event_name "push" as well; it must not be read as a
	// system push.
	event, err := hooks.ClassifyAndDecode([]byte(pushPayload))
	require.NoError(t, err)
	assert.IsType(t, &hooks.PushEvent{}, event)

	family, kind, err := hooks.Classify([]byte(`{"object_kind": "issue", "event_name": "project_create"}`))
	require.NoError(t, err)
	assert.Equal(t, hooks.FamilyWeb, family)
	assert.Equal(t, "issue", kind)
}

func TestClassifyAndDecode_Errors(t *testing.T) { //nolint:funlen
	t.Parallel()

	tests := []struct {
		name         string
		payload      string
		wantErr      error
		wantFamily   hooks.Family
		wantKind     string
		unrecognized bool
		contains     string
	}{
		{
			name:    "not json",
			payload: `object_kind=push`,
			wantErr: hooks.ErrMalformedPayload,
		},
		{
			name:    "json array",
			payload: `[{"object_kind": "push"}]`,
			wantErr: hooks.ErrMalformedPayload,
		},
		{
			name:    "truncated object",
			payload: `{"object_kind": "push"`,
			wantErr: hooks.ErrMalformedPayload,
		},
		{
			name:    "no discriminant",
			payload: `{"ref": "refs/heads/master"}`,
			wantErr: hooks.ErrMissingDiscriminant,
		},
		{
			name:       "numeric object kind",
			payload:    `{"object_kind": 5}`,
			wantErr:    hooks.ErrInvalidDiscriminant,
			wantFamily: hooks.FamilyWeb,
		},
		{
			name:       "null event name",
			payload:    `{"event_name": null}`,
			wantErr:    hooks.ErrInvalidDiscriminant,
			wantFamily: hooks.FamilySystem,
		},
		{
			name:         "unknown object kind",
			payload:      `{"object_kind": "deployment"}`,
			wantErr:      hooks.ErrUnrecognizedObjectKind,
			wantFamily:   hooks.FamilyWeb,
			wantKind:     "deployment",
			unrecognized: true,
		},
		{
			name:         "unknown event name",
			payload:      `{"event_name": "user_failed_login"}`,
			wantErr:      hooks.ErrUnrecognizedEventName,
			wantFamily:   hooks.FamilySystem,
			wantKind:     "user_failed_login",
			unrecognized: true,
		},
		{
			name:       "missing required field",
			payload:    `{"object_kind": "push", "project_id": 1}`,
			wantErr:    hooks.ErrInvalidEvent,
			wantFamily: hooks.FamilyWeb,
			wantKind:   "push",
			contains:   "PushEvent.Ref (required)",
		},
		{
			name:       "wrong field type",
			payload:    `{"object_kind": "push", "ref": "refs/heads/main", "project_id": "fifteen"}`,
			wantErr:    hooks.ErrInvalidEvent,
			wantFamily: hooks.FamilyWeb,
			wantKind:   "push",
		},
		{
			name: "unparseable timestamp",
			payload: `{"object_kind": "issue", "object_attributes": {"id": 1,
				"created_at": "yesterday"}}`,
			wantErr:    hooks.ErrInvalidEvent,
			wantFamily: hooks.FamilyWeb,
			wantKind:   "issue",
			contains:   "yesterday",
		},
		{
			name:       "system hook missing id",
			payload:    `{"event_name": "group_destroy", "name": "StoreCloud"}`,
			wantErr:    hooks.ErrInvalidEvent,
			wantFamily: hooks.FamilySystem,
			wantKind:   "group_destroy",
			contains:   "GroupID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := hooks.ClassifyAndDecode([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, event)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.unrecognized, hooks.IsUnrecognized(err))

			var dispatchErr *hooks.DispatchError
			require.ErrorAs(t, err, &dispatchErr)
			assert.Equal(t, tt.wantFamily, dispatchErr.Family)
			assert.Equal(t, tt.wantKind, dispatchErr.Kind)

			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestClassifyAndDecode_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := hooks.ClassifyAndDecode([]byte(pushPayload))
	require.NoError(t, err)

	second, err := hooks.ClassifyAndDecode([]byte(pushPayload))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestDispatchError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	assert.Equal(t, `web hook "push": boom`,
		(&hooks.DispatchError{Family: hooks.FamilyWeb, Kind: "push", Err: cause}).Error())
	assert.Equal(t, "system hook: boom",
		(&hooks.DispatchError{Family: hooks.FamilySystem, Err: cause}).Error())
	assert.Equal(t, "hook: boom", (&hooks.DispatchError{Err: cause}).Error())
}

func TestHookTime_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: `"2013-12-03T17:23:34Z"`, want: time.Date(2013, 12, 3, 17, 23, 34, 0, time.UTC)},
		{input: `"2013-12-03T17:23:34.123+01:00"`, want: time.Date(2013, 12, 3, 16, 23, 34, 123000000, time.UTC)},
		{input: `"2013-12-03 17:23:34 UTC"`, want: time.Date(2013, 12, 3, 17, 23, 34, 0, time.UTC)},
		{input: `"2013-12-03 17:23:34 -0500"`, want: time.Date(2013, 12, 3, 22, 23, 34, 0, time.UTC)},
		{input: `null`},
		{input: `""`},
		{input: `"03/12/2013"`, wantErr: true},
		{input: `1386091414`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var parsed hooks.HookTime

			err := json.Unmarshal([]byte(tt.input), &parsed)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(parsed.Time), "got %s", parsed.Time)
		})
	}
}

func TestFlexBool_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{input: `true`, want: true},
		{input: `false`},
		{input: `"1"`, want: true},
		{input: `"0"`},
		{input: `"true"`, want: true},
		{input: `""`},
		{input: `null`},
		{input: `"yes"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var value hooks.FlexBool

			err := json.Unmarshal([]byte(tt.input), &value)
			if tt.wantErr {
				require.ErrorIs(t, err, hooks.ErrInvalidEvent)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(value))
		})
	}
}

func TestParseAccessLevel(t *testing.T) {
	t.Parallel()

	level, ok := hooks.ParseAccessLevel("Owner")
	assert.True(t, ok)
	assert.Equal(t, gitlab.AccessLevelOwner, level)

	_, ok = hooks.ParseAccessLevel("Superuser")
	assert.False(t, ok)
}

func TestClassifyAndDecode_ReencodedEventDecodesIdentically(t *testing.T) { //nolint:funlen
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "push", payload: pushPayload},
		{
			name: "merge request with legacy time and string flag",
			payload: `{
				"object_kind": "merge_request",
				"user": {"id": 1, "username": "root"},
				"project": {"id": 5, "path_with_namespace": "g/app"},
				"object_attributes": {
					"id": 99,
					"iid": 1,
					"source_branch": "ms-viewport",
					"target_branch": "master",
					"state": "opened",
					"action": "open",
					"merge_params": {"force_remove_source_branch": "1"},
					"created_at": "2013-12-03 17:23:34 +0200",
					"updated_at": "2013-12-03 17:23:34 UTC"
				}
			}`,
		},
		{
			name: "project create",
			payload: `{"event_name": "project_create", "created_at": "2012-07-21T07:30:54Z",
				"updated_at": "2012-07-21T07:38:22.123456Z",
				"name": "StoreCloud", "path": "storecloud", "path_with_namespace": "jsmith/storecloud",
				"project_id": 74, "owner_name": "John Smith", "project_visibility": "private"}`,
		},
		{
			name: "user added to team",
			payload: `{"event_name": "user_add_to_team", "created_at": "2012-07-21 07:30:56 UTC",
				"access_level": "Master", "project_id": 74, "project_name": "StoreCloud",
				"project_path": "storecloud", "project_path_with_namespace": "jsmith/storecloud",
				"user_email": "johnsmith@gmail.com", "user_name": "John Smith",
				"user_username": "johnsmith", "user_id": 41, "project_visibility": "private"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decoded, err := hooks.ClassifyAndDecode([]byte(tt.payload))
			require.NoError(t, err)

			encoded, err := json.Marshal(decoded)
			require.NoError(t, err)

			again, err := hooks.ClassifyAndDecode(encoded)
			require.NoError(t, err)

			assert.Equal(t, decoded, again)
			assert.Equal(t, decoded.Family(), again.Family())
			assert.Equal(t, decoded.Kind(), again.Kind())
		})
	}
}
