// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/astrojournal/ajlaunch/cmd/ajlaunch"

func main() {
	cmd.Execute()
}
