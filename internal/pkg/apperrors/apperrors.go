// Package apperrors defines the error kinds the services surface to the
// transport layer. Handlers and the global error handler map kinds to HTTP
// statuses; anything not listed here passes through as an internal error.
package apperrors

import "errors"

// Kind classifies a service failure independently of transport codes.
type Kind int

const (
	// KindUnknown is any unclassified store or runtime failure.
	KindUnknown Kind = iota
	// KindDuplicateEntity is a uniqueness violation (household name, invitation pair).
	KindDuplicateEntity
	// KindNotFound means the target is absent or not visible to the caller.
	KindNotFound
	// KindForbidden means the caller lacks authorization for a valid target.
	KindForbidden
	// KindInvitedUserIsOwner rejects inviting the household's own creator.
	KindInvitedUserIsOwner
)

// Error carries a kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func DuplicateEntity(message string) *Error {
	if message == "" {
		message = "Duplicate entity"
	}
	return &Error{Kind: KindDuplicateEntity, Message: message}
}

func NotFound(message string) *Error {
	if message == "" {
		message = "Not found"
	}
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "Forbidden"
	}
	return &Error{Kind: KindForbidden, Message: message}
}

func InvitedUserIsOwner() *Error {
	return &Error{Kind: KindInvitedUserIsOwner, Message: "Invited user is the owner of the household"}
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsDuplicateEntity(err error) bool { return KindOf(err) == KindDuplicateEntity }
func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool       { return KindOf(err) == KindForbidden }
func IsInvitedUserIsOwner(err error) bool {
	return KindOf(err) == KindInvitedUserIsOwner
}
