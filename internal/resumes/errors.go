package resumes

import "errors"

var (
	// ErrNotFound indicates the resume does not exist for the user.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTitleTaken indicates another live resume of the user already has the title.
	ErrTitleTaken = errors.New("title taken")
)

// TitleTakenError carries the title the caller should use instead.
type TitleTakenError struct {
	SuggestedName string
}

func (e *TitleTakenError) Error() string {
	return "title taken, suggested " + e.SuggestedName
}

func (e *TitleTakenError) Unwrap() error {
	return ErrTitleTaken
}
