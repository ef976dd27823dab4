package hooks

import (
	"strings"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
)

// SystemHeader is embedded in every system hook event.
type SystemHeader struct {
	EventName string    `json:"event_name" validate:"required"`
	CreatedAt *HookTime `json:"created_at"`
	UpdatedAt *HookTime `json:"updated_at"`
}

// Family implements Event.
func (SystemHeader) Family() Family { return FamilySystem }

// Kind implements Event.
func (h SystemHeader) Kind() string { return h.EventName }

// ParseAccessLevel maps the human readable access level of membership
// hooks ("Developer", "Maintainer", ...) to an AccessLevel. "Master" is the
// name older instances use for Maintainer.
func ParseAccessLevel(name string) (gitlab.AccessLevel, bool) {
	switch strings.ToLower(name) {
	case "guest":
		return gitlab.AccessLevelGuest, true
	case "planner":
		return gitlab.AccessLevelPlanner, true
	case "reporter":
		return gitlab.AccessLevelReporter, true
	case "developer":
		return gitlab.AccessLevelDeveloper, true
	case "maintainer", "master":
		return gitlab.AccessLevelMaintainer, true
	case "owner":
		return gitlab.AccessLevelOwner, true
	default:
		return gitlab.AccessLevelNone, false
	}
}

// Owner is a project owner listed in project hooks.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectSystemEvent covers project_create, project_destroy, project_rename,
// project_transfer and project_update.
type ProjectSystemEvent struct {
	SystemHeader

	Name                 string           `json:"name"`
	Path                 string           `json:"path"`
	PathWithNamespace    string           `json:"path_with_namespace"`
	ProjectID            gitlab.ProjectID `json:"project_id"              validate:"required"`
	ProjectVisibility    string           `json:"project_visibility"`
	OwnerName            string           `json:"owner_name"`
	OwnerEmail           string           `json:"owner_email"`
	Owners               []Owner          `json:"owners"`
	OldPathWithNamespace *string          `json:"old_path_with_namespace"`
}

// ProjectMemberSystemEvent covers user_add_to_team, user_remove_from_team and
// user_update_for_team.
type ProjectMemberSystemEvent struct {
	SystemHeader

	ProjectName              string           `json:"project_name"`
	ProjectPath              string           `json:"project_path"`
	ProjectPathWithNamespace string           `json:"project_path_with_namespace"`
	ProjectID                gitlab.ProjectID `json:"project_id"                  validate:"required"`
	ProjectVisibility        string           `json:"project_visibility"`
	UserUsername             string           `json:"user_username"`
	UserName                 string           `json:"user_name"`
	UserEmail                string           `json:"user_email"`
	UserID                   gitlab.UserID    `json:"user_id"                     validate:"required"`
	AccessLevel              string           `json:"access_level"`
}

// Level returns the granted access level.
func (e *ProjectMemberSystemEvent) Level() (gitlab.AccessLevel, bool) {
	return ParseAccessLevel(e.AccessLevel)
}

// UserSystemEvent covers user_create, user_destroy and user_rename.
type UserSystemEvent struct {
	SystemHeader

	Name        string        `json:"name"`
	Email       string        `json:"email"`
	UserID      gitlab.UserID `json:"user_id"      validate:"required"`
	Username    string        `json:"username"`
	OldUsername *string       `json:"old_username"`
}

// KeySystemEvent covers key_create and key_destroy.
type KeySystemEvent struct {
	SystemHeader

	ID       gitlab.SSHKeyID `json:"id"       validate:"required"`
	Username string          `json:"username"`
	Key      string          `json:"key"`
}

// GroupSystemEvent covers group_create, group_destroy and group_rename.
type GroupSystemEvent struct {
	SystemHeader

	Name        string         `json:"name"`
	Path        string         `json:"path"`
	FullPath    string         `json:"full_path"`
	GroupID     gitlab.GroupID `json:"group_id"      validate:"required"`
	OwnerName   *string        `json:"owner_name"`
	OwnerEmail  *string        `json:"owner_email"`
	OldPath     *string        `json:"old_path"`
	OldFullPath *string        `json:"old_full_path"`
}

// GroupMemberSystemEvent covers user_add_to_group, user_remove_from_group and
// user_update_for_group.
type GroupMemberSystemEvent struct {
	SystemHeader

	GroupName    string         `json:"group_name"`
	GroupPath    string         `json:"group_path"`
	GroupID      gitlab.GroupID `json:"group_id"      validate:"required"`
	UserUsername string         `json:"user_username"`
	UserName     string         `json:"user_name"`
	UserEmail    string         `json:"user_email"`
	UserID       gitlab.UserID  `json:"user_id"       validate:"required"`
	GroupAccess  string         `json:"group_access"`
}

// Level returns the granted access level.
func (e *GroupMemberSystemEvent) Level() (gitlab.AccessLevel, bool) {
	return ParseAccessLevel(e.GroupAccess)
}

// PushSystemEvent covers system push and tag_push. Payloads that also carry
// object_kind are decoded as PushEvent instead.
type PushSystemEvent struct {
	SystemHeader

	Before            string           `json:"before"`
	After             string           `json:"after"`
	Ref               string           `json:"ref"                 validate:"required"`
	CheckoutSHA       *string          `json:"checkout_sha"`
	Message           *string          `json:"message"`
	UserID            gitlab.UserID    `json:"user_id"`
	UserName          string           `json:"user_name"`
	UserEmail         string           `json:"user_email"`
	UserAvatar        string           `json:"user_avatar"`
	ProjectID         gitlab.ProjectID `json:"project_id"          validate:"required"`
	Project           Project          `json:"project"`
	Commits           []Commit         `json:"commits"`
	TotalCommitsCount int              `json:"total_commits_count"`
}

// RefChange is one updated ref of a repository_update hook.
type RefChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
	Ref    string `json:"ref"`
}

// RepositoryUpdateSystemEvent is sent once per push with every updated ref.
type RepositoryUpdateSystemEvent struct {
	SystemHeader

	UserID     gitlab.UserID    `json:"user_id"`
	UserName   string           `json:"user_name"`
	UserEmail  string           `json:"user_email"`
	UserAvatar string           `json:"user_avatar"`
	ProjectID  gitlab.ProjectID `json:"project_id" validate:"required"`
	Project    Project          `json:"project"`
	Changes    []RefChange      `json:"changes"`
	Refs       []string         `json:"refs"`
}
