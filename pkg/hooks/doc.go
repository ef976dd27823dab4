// Package hooks decodes GitLab web hook and system hook payloads.
//
// GitLab sends both kinds of hook as untyped JSON objects. ClassifyAndDecode
// inspects the discriminant fields before decoding:
//
//   - object_kind selects a web hook (push, tag_push, issue, merge_request,
//     note, build, pipeline, wiki_page);
//   - otherwise event_name selects a system hook (project_*, user_*, key_*,
//     group_*, push, tag_push, repository_update).
//
// object_kind is checked first because some web hooks also carry an
// event_name field. The result is one of the concrete *Event types, which
// callers recover with a type switch:
//
//	event, err := hooks.ClassifyAndDecode(body)
//	if err != nil { return err }
//
//	switch e := event.(type) {
//	case *hooks.PushEvent:
//	  log.Printf("push to %s", e.Ref)
//	case *hooks.MergeRequestEvent:
//	  log.Printf("MR !%d %s", e.ObjectAttributes.IID, e.ObjectAttributes.Action)
//	}
//
// Handler wraps the dispatcher in an http.Handler that checks the
// X-Gitlab-Token secret, and NATSPublisher fans decoded hooks out to NATS
// subjects of the form gitlab.hooks.<family>.<kind>.
package hooks
