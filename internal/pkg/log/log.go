// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogging configures the process-wide logrus defaults.
func InitLogging() {
	logrus.SetOutput(os.Stdout)

	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	logrus.SetFormatter(customFormatter)

	SetInfoLevel()
}

func SetDebugLevel() {
	logrus.SetLevel(logrus.DebugLevel)
}

func SetInfoLevel() {
	logrus.SetLevel(logrus.InfoLevel)
}
