package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup that matched no rows.
type NotFoundError struct {
	Resource string // e.g. "customer"
	Key      string // id or search text
	Search   bool
}

func (e *NotFoundError) Error() string {
	if e.Search {
		return fmt.Sprintf("no such %s with name including %s", e.Resource, e.Key)
	}
	return fmt.Sprintf("no such %s: %s", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// HTTPStatus lets transport layers translate the error into a response code.
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// ErrDuplicate matches every DuplicateError via errors.Is.
var ErrDuplicate = errors.New("duplicate")

// DuplicateError reports an insert rejected by a unique key, e.g. a booking
// that was already stored under the same reference.
type DuplicateError struct {
	Resource string
	Key      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Resource, e.Key)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

func (e *DuplicateError) HTTPStatus() int { return http.StatusConflict }
