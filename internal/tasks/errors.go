// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoBody is returned for a submission without a task body.
var ErrNoBody = errors.New("task has no body")

// TaskError is the uniform failure every rejected task future carries.
type TaskError struct {
	TaskID  string
	Kind    Kind
	Message string
	Err     error
}

func (e *TaskError) Error() string {
	return e.Message
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// normalizeFailure turns a body error or a recovered panic value into a
// TaskError with a non-empty message.
func normalizeFailure(id string, kind Kind, v any) *TaskError {
	te := &TaskError{TaskID: id, Kind: kind}

	switch x := v.(type) {
	case *TaskError:
		te.Message = x.Message
		te.Err = x
	case error:
		te.Message = x.Error()
		te.Err = x
	case string:
		te.Message = x
		te.Err = errors.New(x)
	case nil:
	default:
		te.Message = fmt.Sprintf("%v", x)
		te.Err = errors.New(te.Message)
	}

	te.Message = strings.TrimSpace(te.Message)
	if te.Message == "" {
		te.Message = "unknown error"
	}
	if te.Err == nil {
		te.Err = errors.New(te.Message)
	}
	return te
}
