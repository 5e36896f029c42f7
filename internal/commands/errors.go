package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	CodeInvalidCommand = "BLOG_COMMAND_INVALID"
	CodeCanceled       = "BLOG_COMMAND_CANCELED"
	CodeTimedOut       = "BLOG_COMMAND_TIMED_OUT"
	CodeFailed         = "BLOG_COMMAND_FAILED"
)

// tagged reports whether err needs no further wrapping.
func tagged(err error) bool {
	return err == nil || goerrors.IsWrapped(err)
}

func wrapValidationError(err error) error {
	if tagged(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command").
		WithTextCode(CodeInvalidCommand)
}

func wrapContextError(err error) error {
	if tagged(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(CodeTimedOut)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").
		WithTextCode(CodeCanceled)
}

func wrapExecuteError(err error) error {
	if tagged(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
		WithTextCode(CodeFailed)
}
