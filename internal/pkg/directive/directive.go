// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package directive rewrites single configuration lines in
// semi-structured text files. A directive pairs a line pattern with
// its canonical replacement line; applying it either re-enables and
// rewrites an existing (possibly commented-out) occurrence in place,
// or appends the canonical line at the end of the file.
package directive

import (
	"fmt"
	"regexp"
	"strings"
)

// Outcome describes what applying a directive did to the content.
type Outcome int

const (
	// Unchanged means the canonical line was already present.
	Unchanged Outcome = iota
	// Replaced means an existing occurrence was rewritten in place.
	Replaced
	// Appended means no occurrence existed and the line was added.
	Appended
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Replaced:
		return "replaced"
	case Appended:
		return "appended"
	}
	return fmt.Sprintf("unknown (%d)", int(o))
}

// A Directive is a single named setting expressed as one line.
type Directive struct {
	// Pattern matches a whole line holding the setting, tolerating
	// surrounding whitespace and a leading comment marker so that a
	// previously disabled setting is re-enabled instead of duplicated.
	Pattern *regexp.Regexp

	// Line is the canonical replacement line. It must itself match
	// Pattern, otherwise repeated applications would keep appending.
	Line string
}

// KeyValue is a directive for "Key = Value" style settings with "#"
// comments, as used by pacman.conf.
func KeyValue(key, value string) Directive {
	return Directive{
		Pattern: regexp.MustCompile(`^\s*#?\s*` + regexp.QuoteMeta(key) + `\s*=.*$`),
		Line:    fmt.Sprintf("%s = %s", key, value),
	}
}

// Flag is a directive for bare flag lines ("Color") with "#" comments.
func Flag(name string) Directive {
	return Directive{
		Pattern: regexp.MustCompile(`^\s*#?\s*` + regexp.QuoteMeta(name) + `\s*$`),
		Line:    name,
	}
}

// ShellArray is a directive for shell-style array assignments
// ('NAME=(a b c)'), as used by mkinitcpio.conf. The pattern also
// matches the quoted-string form some installations use.
func ShellArray(name string, values ...string) Directive {
	return Directive{
		Pattern: regexp.MustCompile(`^\s*#?\s*` + regexp.QuoteMeta(name) + `=(\(.*\)|".*")\s*$`),
		Line:    fmt.Sprintf("%s=(%s)", name, strings.Join(values, " ")),
	}
}

// SystemdKey is a directive for "Key=Value" settings in systemd-style
// .conf files, where comments start with "#" or ";".
func SystemdKey(key, value string) Directive {
	return Directive{
		Pattern: regexp.MustCompile(`^\s*[#;]?\s*` + regexp.QuoteMeta(key) + `\s*=.*$`),
		Line:    fmt.Sprintf("%s=%s", key, value),
	}
}

// Apply rewrites content so that the directive's canonical line is in
// effect. The scan is single pass and first match wins: if multiple
// occurrences exist, only the first is rewritten and the rest are left
// alone, matching the long-standing behavior of the tools this file
// format belongs to. All unrelated lines are untouched. Applying the
// same directive twice yields identical content.
func Apply(content []byte, d Directive) ([]byte, Outcome) {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if !d.Pattern.MatchString(line) {
			continue
		}
		if line == d.Line {
			return content, Unchanged
		}
		lines[i] = d.Line
		return []byte(strings.Join(lines, "\n")), Replaced
	}

	return appendLine(content, d.Line), Appended
}

// appendLine adds line at the end of content, preceded by a blank
// line when the file already has content so the new setting does not
// concatenate onto an unterminated last line.
func appendLine(content []byte, line string) []byte {
	if len(content) == 0 {
		return []byte(line + "\n")
	}
	out := string(content)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out + "\n" + line + "\n")
}
