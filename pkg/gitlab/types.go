package gitlab

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ID is a resource identifier tagged with its resource kind, so that a
// ProjectID cannot be passed where a UserID is expected.
type ID[K any] uint64

// String returns the decimal form of the identifier.
func (id ID[K]) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Value returns the raw identifier.
func (id ID[K]) Value() uint64 {
	return uint64(id)
}

// Resource kind markers.
type (
	userKind         struct{}
	projectKind      struct{}
	groupKind        struct{}
	issueKind        struct{}
	mergeRequestKind struct{}
	noteKind         struct{}
	pipelineKind     struct{}
	jobKind          struct{}
	hookKind         struct{}
	milestoneKind    struct{}
	snippetKind      struct{}
	labelKind        struct{}
	runnerKind       struct{}
	commitStatusKind struct{}
	sshKeyKind       struct{}
)

// Typed identifiers.
type (
	UserID         = ID[userKind]
	ProjectID      = ID[projectKind]
	GroupID        = ID[groupKind]
	IssueID        = ID[issueKind]
	MergeRequestID = ID[mergeRequestKind]
	NoteID         = ID[noteKind]
	PipelineID     = ID[pipelineKind]
	JobID          = ID[jobKind]
	HookID         = ID[hookKind]
	MilestoneID    = ID[milestoneKind]
	SnippetID      = ID[snippetKind]
	LabelID        = ID[labelKind]
	RunnerID       = ID[runnerKind]
	CommitStatusID = ID[commitStatusKind]
	SSHKeyID       = ID[sshKeyKind]
)

// ParseID parses a positive decimal identifier, e.g. ParseID[HookID]("12").
func ParseID[T ~uint64](value string) (T, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, value)
	}

	return T(id), nil
}

// NameOrID references a project, group or user either by full path or by ID.
type NameOrID struct {
	name string
	id   uint64
	byID bool
}

// ByName references a resource by its full path (e.g. "group/subgroup/project").
func ByName(name string) NameOrID {
	return NameOrID{name: name}
}

// ByID references a resource by typed identifier.
func ByID[K any](id ID[K]) NameOrID {
	return NameOrID{id: uint64(id), byID: true}
}

// ParseNameOrID treats an all-digit reference as an ID and anything else as
// a full path.
func ParseNameOrID(ref string) NameOrID {
	id, err := strconv.ParseUint(ref, 10, 64)
	if err == nil {
		return NameOrID{id: id, byID: true}
	}

	return ByName(ref)
}

// PathSegment returns the reference encoded as a single URL path segment.
func (n NameOrID) PathSegment() string {
	if n.byID {
		return strconv.FormatUint(n.id, 10)
	}

	return url.PathEscape(n.name)
}

// String returns the unescaped reference.
func (n NameOrID) String() string {
	if n.byID {
		return strconv.FormatUint(n.id, 10)
	}

	return n.name
}

// IsZero reports whether the reference is empty.
func (n NameOrID) IsZero() bool {
	return !n.byID && n.name == ""
}

// SortOrder is the direction of an ordered listing.
type SortOrder string

const (
	// SortAscending sorts smallest first.
	SortAscending SortOrder = "asc"
	// SortDescending sorts largest first. This is the API default.
	SortDescending SortOrder = "desc"
)

// ParseSortOrder parses "asc" or "desc" (case-insensitive). Empty means descending.
func ParseSortOrder(value string) (SortOrder, error) {
	switch strings.ToLower(value) {
	case "", string(SortDescending):
		return SortDescending, nil
	case string(SortAscending):
		return SortAscending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, value)
	}
}

// AccessLevel is a membership permission level.
type AccessLevel int

// Access levels as defined by the API.
const (
	AccessLevelNone       AccessLevel = 0
	AccessLevelMinimal    AccessLevel = 5
	AccessLevelGuest      AccessLevel = 10
	AccessLevelPlanner    AccessLevel = 15
	AccessLevelReporter   AccessLevel = 20
	AccessLevelDeveloper  AccessLevel = 30
	AccessLevelMaintainer AccessLevel = 40
	AccessLevelOwner      AccessLevel = 50
	AccessLevelAdmin      AccessLevel = 60
)

func (a AccessLevel) String() string {
	switch a {
	case AccessLevelNone:
		return "none"
	case AccessLevelMinimal:
		return "minimal"
	case AccessLevelGuest:
		return "guest"
	case AccessLevelPlanner:
		return "planner"
	case AccessLevelReporter:
		return "reporter"
	case AccessLevelDeveloper:
		return "developer"
	case AccessLevelMaintainer:
		return "maintainer"
	case AccessLevelOwner:
		return "owner"
	case AccessLevelAdmin:
		return "admin"
	default:
		return "access level " + strconv.Itoa(int(a))
	}
}
