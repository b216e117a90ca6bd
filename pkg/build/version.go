// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package build

// Version gets overridden at build time using -X github.com/archtune/archtune/pkg/build.Version=$VERSION
var Version = "dev"

// Commit gets overridden at build time with the git revision
var Commit string
