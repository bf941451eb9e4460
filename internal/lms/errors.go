// File path: internal/lms/errors.go
package lms

import "errors"

var (
	// ErrLessonNotFound marks a lookup for a lesson that does not exist or is
	// not published. It is the only retrieval failure surfaced to callers.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrConversationNotFound marks a lookup for an absent conversation.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrArtifactUnavailable marks a transcript artifact that is missing or
	// unreadable in every known form.
	ErrArtifactUnavailable = errors.New("transcript artifact unavailable")
)
