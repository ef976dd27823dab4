package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
)

// Family is the hook source: project web hooks or instance system hooks.
type Family string

const (
	// FamilyWeb events carry an object_kind discriminant.
	FamilyWeb Family = "web"
	// FamilySystem events carry an event_name discriminant.
	FamilySystem Family = "system"
)

// Event is a decoded hook payload.
type Event interface {
	Family() Family
	// Kind is the discriminant value that selected the decoder.
	Kind() string
}

// hookTimeLayouts are tried in order. Older instances send a space separated
// form with a UTC suffix or numeric offset.
var hookTimeLayouts = []string{ //nolint:gochecknoglobals // read-only layout table
	time.RFC3339Nano,
	"2006-01-02 15:04:05 UTC",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
}

// HookTime is a timestamp in any of the formats hook payloads use.
type HookTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *HookTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	value, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("hook time must be a string: %w", err)
	}

	if value == "" {
		return nil
	}

	for _, layout := range hookTimeLayouts {
		parsed, parseErr := time.Parse(layout, value)
		if parseErr == nil {
			t.Time = parsed.UTC()

			return nil
		}
	}

	return fmt.Errorf("%w: unrecognized hook time %q", ErrInvalidEvent, value)
}

// FlexBool accepts true/false as well as "1"/"0" and "true"/"false" strings.
// Some merge request fields are sent either way depending on the instance
// version.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)

	switch strings.ToLower(text) {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("%w: cannot read %s as a boolean", ErrInvalidEvent, string(data))
	}

	return nil
}

// WebHeader is embedded in every web hook event.
type WebHeader struct {
	ObjectKind string `json:"object_kind"          validate:"required"`
	EventType  string `json:"event_type,omitempty"`
}

// Family implements Event.
func (WebHeader) Family() Family { return FamilyWeb }

// Kind implements Event.
func (h WebHeader) Kind() string { return h.ObjectKind }

// Project describes the project a web hook fired for.
type Project struct {
	ID                gitlab.ProjectID `json:"id"`
	Name              string           `json:"name"`
	Description       *string          `json:"description"`
	WebURL            string           `json:"web_url"`
	AvatarURL         *string          `json:"avatar_url"`
	GitSSHURL         string           `json:"git_ssh_url"`
	GitHTTPURL        string           `json:"git_http_url"`
	Namespace         string           `json:"namespace"`
	VisibilityLevel   int              `json:"visibility_level"`
	PathWithNamespace string           `json:"path_with_namespace"`
	DefaultBranch     string           `json:"default_branch"`
	Homepage          string           `json:"homepage"`
}

// User is the actor of a web hook.
type User struct {
	ID        gitlab.UserID `json:"id"`
	Name      string        `json:"name"`
	Username  string        `json:"username"`
	AvatarURL string        `json:"avatar_url"`
	Email     string        `json:"email"`
}

// CommitAuthor is the author identity recorded in a commit.
type CommitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Commit is a commit summary included in push, note and pipeline hooks.
type Commit struct {
	ID        string       `json:"id"`
	Message   string       `json:"message"`
	Title     string       `json:"title"`
	Timestamp HookTime     `json:"timestamp"`
	URL       string       `json:"url"`
	Author    CommitAuthor `json:"author"`
	Added     []string     `json:"added"`
	Modified  []string     `json:"modified"`
	Removed   []string     `json:"removed"`
}

// Label is a label attached to an issue or merge request.
type Label struct {
	ID          gitlab.LabelID `json:"id"`
	Title       string         `json:"title"`
	Color       string         `json:"color"`
	Description *string        `json:"description"`
}

// PushEvent is sent for branch pushes (object_kind "push") and tag pushes
// (object_kind "tag_push").
type PushEvent struct {
	WebHeader

	EventName         string           `json:"event_name"`
	Before            string           `json:"before"`
	After             string           `json:"after"`
	Ref               string           `json:"ref"                 validate:"required"`
	CheckoutSHA       *string          `json:"checkout_sha"`
	Message           *string          `json:"message"`
	UserID            gitlab.UserID    `json:"user_id"`
	UserName          string           `json:"user_name"`
	UserUsername      string           `json:"user_username"`
	UserEmail         string           `json:"user_email"`
	UserAvatar        string           `json:"user_avatar"`
	ProjectID         gitlab.ProjectID `json:"project_id"          validate:"required"`
	Project           Project          `json:"project"`
	Commits           []Commit         `json:"commits"`
	TotalCommitsCount int              `json:"total_commits_count"`
}

// IsTag reports whether the push created, moved or deleted a tag.
func (e *PushEvent) IsTag() bool {
	return e.ObjectKind == "tag_push" || strings.HasPrefix(e.Ref, "refs/tags/")
}

// IssueAttributes are the issue fields of issue and note hooks.
type IssueAttributes struct {
	ID           gitlab.IssueID      `json:"id"           validate:"required"`
	IID          int                 `json:"iid"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	State        string              `json:"state"`
	Action       string              `json:"action"`
	URL          string              `json:"url"`
	AuthorID     gitlab.UserID       `json:"author_id"`
	ProjectID    gitlab.ProjectID    `json:"project_id"`
	AssigneeID   *gitlab.UserID      `json:"assignee_id"`
	AssigneeIDs  []gitlab.UserID     `json:"assignee_ids"`
	MilestoneID  *gitlab.MilestoneID `json:"milestone_id"`
	Confidential bool                `json:"confidential"`
	DueDate      *string             `json:"due_date"`
	CreatedAt    HookTime            `json:"created_at"`
	UpdatedAt    HookTime            `json:"updated_at"`
	ClosedAt     *HookTime           `json:"closed_at"`
}

// IssueEvent is sent when an issue is opened, updated, closed or reopened.
type IssueEvent struct {
	WebHeader

	User             User                       `json:"user"`
	Project          Project                    `json:"project"`
	ObjectAttributes IssueAttributes            `json:"object_attributes"`
	Assignees        []User                     `json:"assignees"`
	Labels           []Label                    `json:"labels"`
	Changes          map[string]json.RawMessage `json:"changes"`
}

// MergeParams holds merge options recorded on a merge request.
type MergeParams struct {
	ForceRemoveSourceBranch FlexBool `json:"force_remove_source_branch"`
}

// MergeRequestAttributes are the merge request fields of merge request and
// note hooks.
type MergeRequestAttributes struct {
	ID              gitlab.MergeRequestID `json:"id"                validate:"required"`
	IID             int                   `json:"iid"`
	Title           string                `json:"title"`
	Description     *string               `json:"description"`
	State           string                `json:"state"`
	Action          string                `json:"action"`
	MergeStatus     string                `json:"merge_status"`
	URL             string                `json:"url"`
	SourceBranch    string                `json:"source_branch"`
	TargetBranch    string                `json:"target_branch"`
	SourceProjectID gitlab.ProjectID      `json:"source_project_id"`
	TargetProjectID gitlab.ProjectID      `json:"target_project_id"`
	AuthorID        gitlab.UserID         `json:"author_id"`
	AssigneeID      *gitlab.UserID        `json:"assignee_id"`
	MilestoneID     *gitlab.MilestoneID   `json:"milestone_id"`
	MergeCommitSHA  *string               `json:"merge_commit_sha"`
	MergeParams     MergeParams           `json:"merge_params"`
	WorkInProgress  bool                  `json:"work_in_progress"`
	Draft           bool                  `json:"draft"`
	Source          *Project              `json:"source"`
	Target          *Project              `json:"target"`
	LastCommit      *Commit               `json:"last_commit"`
	CreatedAt       HookTime              `json:"created_at"`
	UpdatedAt       HookTime              `json:"updated_at"`
}

// MergeRequestEvent is sent on merge request state changes.
type MergeRequestEvent struct {
	WebHeader

	User             User                       `json:"user"`
	Project          Project                    `json:"project"`
	ObjectAttributes MergeRequestAttributes     `json:"object_attributes"`
	Assignees        []User                     `json:"assignees"`
	Labels           []Label                    `json:"labels"`
	Changes          map[string]json.RawMessage `json:"changes"`
}

// SnippetAttributes are the snippet fields of note hooks.
type SnippetAttributes struct {
	ID              gitlab.SnippetID  `json:"id"`
	Title           string            `json:"title"`
	Content         string            `json:"content"`
	AuthorID        gitlab.UserID     `json:"author_id"`
	ProjectID       *gitlab.ProjectID `json:"project_id"`
	FileName        string            `json:"file_name"`
	Type            string            `json:"type"`
	VisibilityLevel int               `json:"visibility_level"`
	CreatedAt       HookTime          `json:"created_at"`
	UpdatedAt       HookTime          `json:"updated_at"`
}

// Noteable types.
const (
	NoteableCommit       = "Commit"
	NoteableIssue        = "Issue"
	NoteableMergeRequest = "MergeRequest"
	NoteableSnippet      = "Snippet"
)

// NoteAttributes are the comment fields of note hooks.
type NoteAttributes struct {
	ID           gitlab.NoteID    `json:"id"            validate:"required"`
	Note         string           `json:"note"`
	NoteableType string           `json:"noteable_type" validate:"required"`
	AuthorID     gitlab.UserID    `json:"author_id"`
	ProjectID    gitlab.ProjectID `json:"project_id"`
	CommitID     *string          `json:"commit_id"`
	LineCode     *string          `json:"line_code"`
	DiscussionID string           `json:"discussion_id"`
	System       bool             `json:"system"`
	URL          string           `json:"url"`
	Type         *string          `json:"type"`
	CreatedAt    HookTime         `json:"created_at"`
	UpdatedAt    HookTime         `json:"updated_at"`
	// NoteableID is a commit SHA for commit notes and a numeric id otherwise.
	NoteableID json.RawMessage `json:"noteable_id"`
}

// NoteableSHA returns the commented commit for commit notes.
func (a *NoteAttributes) NoteableSHA() (string, bool) {
	if a.NoteableType != NoteableCommit {
		return "", false
	}

	var sha string
	if json.Unmarshal(a.NoteableID, &sha) != nil || sha == "" {
		return "", false
	}

	return sha, true
}

// NoteableNumericID returns the commented issue, merge request or snippet id.
func (a *NoteAttributes) NoteableNumericID() (uint64, bool) {
	if a.NoteableType == NoteableCommit {
		return 0, false
	}

	var id uint64
	if json.Unmarshal(a.NoteableID, &id) != nil || id == 0 {
		return 0, false
	}

	return id, true
}

// NoteEvent is sent when a comment is added to a commit, issue, merge
// request or snippet. Exactly one of the target fields is set.
type NoteEvent struct {
	WebHeader

	User             User                    `json:"user"`
	ProjectID        gitlab.ProjectID        `json:"project_id"`
	Project          Project                 `json:"project"`
	ObjectAttributes NoteAttributes          `json:"object_attributes"`
	Commit           *Commit                 `json:"commit"`
	Issue            *IssueAttributes        `json:"issue"`
	MergeRequest     *MergeRequestAttributes `json:"merge_request"`
	Snippet          *SnippetAttributes      `json:"snippet"`
}

// BuildCommit is the pipeline commit summary of a job hook.
type BuildCommit struct {
	ID          gitlab.PipelineID `json:"id"`
	SHA         string            `json:"sha"`
	Message     string            `json:"message"`
	AuthorName  string            `json:"author_name"`
	AuthorEmail string            `json:"author_email"`
	Status      string            `json:"status"`
	Duration    *float64          `json:"duration"`
	StartedAt   *HookTime         `json:"started_at"`
	FinishedAt  *HookTime         `json:"finished_at"`
}

// Repository is the repository summary of a job hook.
type Repository struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	Description     *string `json:"description"`
	Homepage        string  `json:"homepage"`
	GitHTTPURL      string  `json:"git_http_url"`
	GitSSHURL       string  `json:"git_ssh_url"`
	VisibilityLevel int     `json:"visibility_level"`
}

// BuildEvent is sent when a CI job changes status (object_kind "build").
type BuildEvent struct {
	WebHeader

	Ref                string            `json:"ref"`
	Tag                bool              `json:"tag"`
	BeforeSHA          string            `json:"before_sha"`
	SHA                string            `json:"sha"`
	BuildID            gitlab.JobID      `json:"build_id"             validate:"required"`
	BuildName          string            `json:"build_name"`
	BuildStage         string            `json:"build_stage"`
	BuildStatus        string            `json:"build_status"`
	BuildStartedAt     *HookTime         `json:"build_started_at"`
	BuildFinishedAt    *HookTime         `json:"build_finished_at"`
	BuildDuration      *float64          `json:"build_duration"`
	BuildAllowFailure  bool              `json:"build_allow_failure"`
	BuildFailureReason string            `json:"build_failure_reason"`
	PipelineID         gitlab.PipelineID `json:"pipeline_id"`
	ProjectID          gitlab.ProjectID  `json:"project_id"           validate:"required"`
	ProjectName        string            `json:"project_name"`
	User               User              `json:"user"`
	Commit             BuildCommit       `json:"commit"`
	Repository         Repository        `json:"repository"`
}

// Variable is a pipeline variable.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PipelineAttributes are the pipeline fields of a pipeline hook.
type PipelineAttributes struct {
	ID             gitlab.PipelineID `json:"id"              validate:"required"`
	IID            int               `json:"iid"`
	Ref            string            `json:"ref"`
	Tag            bool              `json:"tag"`
	SHA            string            `json:"sha"`
	BeforeSHA      string            `json:"before_sha"`
	Source         string            `json:"source"`
	Status         string            `json:"status"`
	DetailedStatus string            `json:"detailed_status"`
	Stages         []string          `json:"stages"`
	Duration       *float64          `json:"duration"`
	Variables      []Variable        `json:"variables"`
	CreatedAt      *HookTime         `json:"created_at"`
	FinishedAt     *HookTime         `json:"finished_at"`
}

// PipelineBuild is one job of a pipeline hook.
type PipelineBuild struct {
	ID           gitlab.JobID `json:"id"`
	Stage        string       `json:"stage"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	When         string       `json:"when"`
	Manual       bool         `json:"manual"`
	AllowFailure bool         `json:"allow_failure"`
	User         User         `json:"user"`
	CreatedAt    *HookTime    `json:"created_at"`
	StartedAt    *HookTime    `json:"started_at"`
	FinishedAt   *HookTime    `json:"finished_at"`
}

// PipelineEvent is sent when a pipeline changes status.
type PipelineEvent struct {
	WebHeader

	ObjectAttributes PipelineAttributes `json:"object_attributes"`
	User             User               `json:"user"`
	Project          Project            `json:"project"`
	Commit           *Commit            `json:"commit"`
	Builds           []PipelineBuild    `json:"builds"`
}

// Wiki describes the wiki repository of a wiki page hook.
type Wiki struct {
	WebURL            string `json:"web_url"`
	GitSSHURL         string `json:"git_ssh_url"`
	GitHTTPURL        string `json:"git_http_url"`
	PathWithNamespace string `json:"path_with_namespace"`
	DefaultBranch     string `json:"default_branch"`
}

// WikiPageAttributes are the page fields of a wiki page hook.
type WikiPageAttributes struct {
	Title   string `json:"title"   validate:"required"`
	Content string `json:"content"`
	Format  string `json:"format"`
	Message string `json:"message"`
	Slug    string `json:"slug"    validate:"required"`
	URL     string `json:"url"`
	Action  string `json:"action"`
}

// WikiPageEvent is sent when a wiki page is created, updated or deleted.
type WikiPageEvent struct {
	WebHeader

	User             User               `json:"user"`
	Project          Project            `json:"project"`
	Wiki             Wiki               `json:"wiki"`
	ObjectAttributes WikiPageAttributes `json:"object_attributes"`
}
