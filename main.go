// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/runcfg/runcfg/cmd/runcfg"

func main() {
	cmd.Execute()
}
