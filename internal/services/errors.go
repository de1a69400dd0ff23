package services

// Error codes surfaced to clients inside the error envelope. Handlers map
// the error type to an HTTP status and pass the code through unchanged.
const (
	CodeInvalidRating          = "invalid_rating"
	CodeInvalidParams          = "invalid_params"
	CodeUnsupportedItemType    = "unsupported_item_type"
	CodeItemNotFound           = "item_not_found"
	CodeQuizNotFound           = "quiz_not_found"
	CodeItemNotInQuiz          = "item_not_in_quiz"
	CodeQuizAlreadyFinished    = "quiz_already_finished"
	CodeDuplicateSubmission    = "duplicate_submission"
	CodeConcurrentModification = "concurrent_modification"
	CodeQuizExpired            = "quiz_expired"
)

type ValidationError struct {
	Code   string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct {
	Code    string
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// GoneError marks operations against a quiz whose time limit has lapsed.
type GoneError struct {
	Code    string
	Message string
}

func (e *GoneError) Error() string { return e.Message }
