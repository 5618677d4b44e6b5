// SPDX-License-Identifier: MPL-2.0

//go:build windows

package notify

import (
	"golang.org/x/sys/windows"
)

// dialogStyle is a single OK button with the exclamation icon, brought to
// the foreground.
const dialogStyle = windows.MB_OK | windows.MB_ICONEXCLAMATION | windows.MB_SETFOREGROUND

// showDialog displays a modal message box and blocks until it is dismissed.
func showDialog(n Notification) (bool, error) {
	text := n.Message
	if n.Detail != "" {
		text += "\n\n" + n.Detail
	}

	textPtr, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return false, err
	}
	captionPtr, err := windows.UTF16PtrFromString(n.Title)
	if err != nil {
		return false, err
	}

	if _, err := windows.MessageBox(0, textPtr, captionPtr, dialogStyle); err != nil {
		return false, err
	}
	return true, nil
}
