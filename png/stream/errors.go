package stream

import "errors"

var (
	// ErrInvalidState is returned when an operation is called out of order
	// (pixels before Start, End twice, Start after End, ...)
	ErrInvalidState = errors.New("png: invalid encoder state")

	// ErrIncompleteRow is returned by End when the pixels received so far
	// do not end on a row boundary
	ErrIncompleteRow = errors.New("png: pixel data ends mid-row")

	// ErrIncompleteImage is returned by End when fewer rows than the
	// declared height were received
	ErrIncompleteImage = errors.New("png: fewer rows than image height")

	// ErrTooManyRows is returned when a push would exceed the declared height
	ErrTooManyRows = errors.New("png: more rows than image height")

	// ErrEncoderFailed wraps the cause that moved the encoder to StateFailed
	ErrEncoderFailed = errors.New("png: encoder failed")

	// ErrAborted is the cause recorded by Abort when the caller gives none
	ErrAborted = errors.New("png: encoding aborted")
)
