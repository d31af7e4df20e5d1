package main

import (
	"errors"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// Exit statuses follow sysexits where one fits.
const (
	exitFailure  = 1
	exitUsage    = 64
	exitIOErr    = 74
	exitConfig   = 78
	exitNotATerm = 2
)

type exitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

func (e exitError) ExitCode() int {
	if e.code == 0 {
		return exitFailure
	}
	return e.code
}

func withExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return exitError{code: code, err: err}
}

func exitCodeForError(err error) int {
	if err == nil {
		return 0
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	switch lerrors.GetCode(err) {
	case lerrors.ErrCodeConfigLoad, lerrors.ErrCodeConfigParse, lerrors.ErrCodeConfigInvalid:
		return exitConfig
	case lerrors.ErrCodeNotTerminal:
		return exitNotATerm
	case lerrors.ErrCodeBackendInit, lerrors.ErrCodeBusConnect:
		return exitIOErr
	case lerrors.ErrCodeInvalidInput, lerrors.ErrCodeAppUnknown:
		return exitUsage
	}
	return exitFailure
}

// describe renders err for the terminal, preferring the friendly form of
// coded errors.
func describe(err error) string {
	var le *lerrors.Error
	if errors.As(err, &le) {
		return le.Friendly()
	}
	return err.Error()
}
