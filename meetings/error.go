package meetings

import (
	"errors"
	"fmt"
)

type ErrorReason string

const (
	REASON_MEETING_DOES_NOT_EXIST          ErrorReason = "MEETING_DOES_NOT_EXIST"
	REASON_MEETING_ALREADY_EXISTS          ErrorReason = "MEETING_ALREADY_EXISTS"
	REASON_STORAGE_UNAVAILABLE             ErrorReason = "STORAGE_UNAVAILABLE"
	REASON_CORRUPT_STORE                   ErrorReason = "CORRUPT_STORE"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_VALIDATION_FAILED               ErrorReason = "VALIDATION_FAILED"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newMeetingError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewMeetingDoesNotExistError(message string, cause error) *Error {
	return newMeetingError(REASON_MEETING_DOES_NOT_EXIST, message, cause)
}

func NewMeetingAlreadyExistsError(message string, cause error) *Error {
	return newMeetingError(REASON_MEETING_ALREADY_EXISTS, message, cause)
}

func NewStorageUnavailableError(message string, cause error) *Error {
	return newMeetingError(REASON_STORAGE_UNAVAILABLE, message, cause)
}

func NewCorruptStoreError(message string, cause error) *Error {
	return newMeetingError(REASON_CORRUPT_STORE, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newMeetingError(REASON_INVALID_CURSOR, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newMeetingError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newMeetingError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newMeetingError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewValidationFailedError(message string) *Error {
	return newMeetingError(REASON_VALIDATION_FAILED, message, nil)
}

// IsNotFound reports whether err carries REASON_MEETING_DOES_NOT_EXIST
// anywhere in its chain.
func IsNotFound(err error) bool {
	return HasReason(err, REASON_MEETING_DOES_NOT_EXIST)
}

func HasReason(err error, reason ErrorReason) bool {
	var meetingErr *Error
	if !errors.As(err, &meetingErr) {
		return false
	}
	return meetingErr.Reason == reason
}
