// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "playpack-cli/cmd/playpack"
)

func main() {
	cmd.Execute()
}
