package hooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Static errors for err113 compliance.
var (
	ErrMalformedPayload       = errors.New("hook payload is not a JSON object")
	ErrMissingDiscriminant    = errors.New("hook payload has neither object_kind nor event_name")
	ErrInvalidDiscriminant    = errors.New("hook discriminant is not a string")
	ErrUnrecognizedObjectKind = errors.New("unrecognized web hook object kind")
	ErrUnrecognizedEventName  = errors.New("unrecognized system hook event name")
	ErrInvalidEvent           = errors.New("hook payload does not match its event type")
)

const (
	fieldObjectKind = "object_kind"
	fieldEventName  = "event_name"
)

// DispatchError reports why a payload could not be classified or decoded.
// Family and Kind are set as far as classification got.
type DispatchError struct {
	Family Family
	Kind   string
	Err    error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	switch {
	case e.Kind != "":
		return fmt.Sprintf("%s hook %q: %v", e.Family, e.Kind, e.Err)
	case e.Family != "":
		return fmt.Sprintf("%s hook: %v", e.Family, e.Err)
	default:
		return fmt.Sprintf("hook: %v", e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func eventValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})

	return validate
}

// newWebEvent returns an empty event for a web hook object_kind.
func newWebEvent(kind string) (Event, bool) {
	switch kind {
	case "push", "tag_push":
		return &PushEvent{}, true
	case "issue":
		return &IssueEvent{}, true
	case "merge_request":
		return &MergeRequestEvent{}, true
	case "note":
		return &NoteEvent{}, true
	case "build":
		return &BuildEvent{}, true
	case "pipeline":
		return &PipelineEvent{}, true
	case "wiki_page":
		return &WikiPageEvent{}, true
	default:
		return nil, false
	}
}

// newSystemEvent returns an empty event for a system hook event_name.
func newSystemEvent(name string) (Event, bool) {
	switch name {
	case "project_create", "project_destroy", "project_rename", "project_transfer", "project_update":
		return &ProjectSystemEvent{}, true
	case "user_add_to_team", "user_remove_from_team", "user_update_for_team":
		return &ProjectMemberSystemEvent{}, true
	case "user_create", "user_destroy", "user_rename":
		return &UserSystemEvent{}, true
	case "key_create", "key_destroy":
		return &KeySystemEvent{}, true
	case "group_create", "group_destroy", "group_rename":
		return &GroupSystemEvent{}, true
	case "user_add_to_group", "user_remove_from_group", "user_update_for_group":
		return &GroupMemberSystemEvent{}, true
	case "push", "tag_push":
		return &PushSystemEvent{}, true
	case "repository_update":
		return &RepositoryUpdateSystemEvent{}, true
	default:
		return nil, false
	}
}

// Classify reports the family and kind of a payload without decoding it.
func Classify(raw []byte) (Family, string, error) {
	var document map[string]json.RawMessage

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", "", &DispatchError{Err: ErrMalformedPayload}
	}

	err := json.Unmarshal(trimmed, &document)
	if err != nil {
		return "", "", &DispatchError{Err: fmt.Errorf("%w: %w", ErrMalformedPayload, err)}
	}

	// object_kind wins: some web hooks also carry an event_name.
	family := FamilyWeb

	discriminant, ok := document[fieldObjectKind]
	if !ok {
		family = FamilySystem

		discriminant, ok = document[fieldEventName]
		if !ok {
			return "", "", &DispatchError{Err: ErrMissingDiscriminant}
		}
	}

	var kind string

	err = json.Unmarshal(discriminant, &kind)
	if err != nil || bytes.Equal(bytes.TrimSpace(discriminant), []byte("null")) {
		return family, "", &DispatchError{Family: family, Err: ErrInvalidDiscriminant}
	}

	return family, kind, nil
}

// ClassifyAndDecode selects the event type from the payload's discriminant
// and decodes the payload into it. object_kind selects a web hook and takes
// precedence over event_name, which selects a system hook. Exactly one
// decoder is attempted; its failure is reported against the selected kind.
//
// The function is pure: the same input always yields an equal result.
func ClassifyAndDecode(raw []byte) (Event, error) {
	family, kind, err := Classify(raw)
	if err != nil {
		return nil, err
	}

	var (
		event Event
		known bool
	)

	if family == FamilyWeb {
		event, known = newWebEvent(kind)
		if !known {
			return nil, &DispatchError{Family: family, Kind: kind, Err: ErrUnrecognizedObjectKind}
		}
	} else {
		event, known = newSystemEvent(kind)
		if !known {
			return nil, &DispatchError{Family: family, Kind: kind, Err: ErrUnrecognizedEventName}
		}
	}

	err = json.Unmarshal(raw, event)
	if err != nil {
		if !errors.Is(err, ErrInvalidEvent) {
			err = fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}

		return nil, &DispatchError{Family: family, Kind: kind, Err: err}
	}

	err = eventValidator().Struct(event)
	if err != nil {
		return nil, &DispatchError{Family: family, Kind: kind, Err: validationError(err)}
	}

	return event, nil
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Namespace(), fieldErr.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(fields, ", "))
}

// IsUnrecognized reports whether err means the payload was well formed but
// of a kind this package does not decode.
func IsUnrecognized(err error) bool {
	return errors.Is(err, ErrUnrecognizedObjectKind) || errors.Is(err, ErrUnrecognizedEventName)
}
