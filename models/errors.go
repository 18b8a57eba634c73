package models

import (
	"errors"
	"fmt"
)

// NetworkError covers unreachable hosts, timeouts and non-2xx responses.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error fetching %s: status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a document that lacks the expected structure.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error in %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("parse error in %s", e.What)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeError reports image bytes that could not be decoded or re-encoded.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error for %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LocalIOError reports a missing or unreadable offline file.
type LocalIOError struct {
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("local file %s unavailable: %v", e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// NotFoundError reports an article number unknown to the store.
type NotFoundError struct {
	Number int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("article %d not found", e.Number)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

func IsLocalIO(err error) bool {
	var target *LocalIOError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
