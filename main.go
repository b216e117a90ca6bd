// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/archtune/archtune/cmd"
)

func main() {
	cmd.Execute()
}
