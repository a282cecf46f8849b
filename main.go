// SPDX-License-Identifier: MPL-2.0

// bookwright is a project-scaffolding wizard for writing projects.
package main

import cmd "bookwright-cli/cmd/bookwright"

func main() {
	cmd.Execute()
}
