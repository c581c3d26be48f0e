package engine

import (
	"errors"
	"fmt"
)

// Error reports caller misuse of the engine: asking for a pair from a
// vocabulary that cannot form one, or answering a question for a card the
// curriculum does not define or the learner has not unlocked. Runtime conditions such as corrupted state
// or an empty plan never produce an Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Card is the offending card id, when there is one.
	Card string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeVocabularyTooSmall indicates a pair was requested from fewer
	// than two units.
	ErrCodeVocabularyTooSmall ErrorCode = "VOCABULARY_TOO_SMALL"

	// ErrCodeUnknownVariant indicates a card id names a variant the
	// curriculum does not define.
	ErrCodeUnknownVariant ErrorCode = "UNKNOWN_VARIANT"

	// ErrCodeUnknownGroup indicates a card id names units or a family the
	// curriculum does not define.
	ErrCodeUnknownGroup ErrorCode = "UNKNOWN_GROUP"

	// ErrCodeCardLocked indicates an answer for a card the learner has not
	// unlocked.
	ErrCodeCardLocked ErrorCode = "CARD_LOCKED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Card != "" {
		return fmt.Sprintf("%s: %s (card=%s)", e.Code, e.Message, e.Card)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsVocabularyTooSmall returns true if err is a VOCABULARY_TOO_SMALL error.
// Uses errors.As to handle wrapped errors.
func IsVocabularyTooSmall(err error) bool {
	return hasCode(err, ErrCodeVocabularyTooSmall)
}

// IsUnknownVariant returns true if err is an UNKNOWN_VARIANT error.
func IsUnknownVariant(err error) bool {
	return hasCode(err, ErrCodeUnknownVariant)
}

// IsUnknownGroup returns true if err is an UNKNOWN_GROUP error.
func IsUnknownGroup(err error) bool {
	return hasCode(err, ErrCodeUnknownGroup)
}

// IsCardLocked returns true if err is a CARD_LOCKED error.
func IsCardLocked(err error) bool {
	return hasCode(err, ErrCodeCardLocked)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func newVocabularyTooSmallError(n int) *Error {
	return &Error{
		Code:    ErrCodeVocabularyTooSmall,
		Message: fmt.Sprintf("need at least 2 units to form a pair, have %d", n),
	}
}

func newUnknownCardError(code ErrorCode, card, msg string) *Error {
	return &Error{Code: code, Message: msg, Card: card}
}
