// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"github.com/astrojournal/ajlaunch/internal/issue"
	"github.com/astrojournal/ajlaunch/internal/notify"
)

// FatalError is a pipeline failure that ends the launcher. It carries the
// exit code and what the user should be told.
type FatalError struct {
	Code    int
	Issue   issue.Id
	Title   string
	Message string
	// Detail is shown under the message, usually the underlying error text.
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error { return e.Err }

// Notification converts the failure into a user notification.
func (e *FatalError) Notification() notify.Notification {
	return notify.Notification{
		Title:   e.Title,
		Message: e.Message,
		Detail:  e.Detail,
		Issue:   e.Issue,
	}
}
