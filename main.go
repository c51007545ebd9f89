// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/venvctl/cmd/venvctl"

func main() {
	cmd.Execute()
}
