// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package notify

// showDialog reports that no native message box exists on this platform.
func showDialog(Notification) (bool, error) {
	return false, nil
}
