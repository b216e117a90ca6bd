// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package fstab transforms mount table files of the classic six-field
// format (source, target, fstype, options, dump, pass), as found in
// /etc/fstab and /proc/self/mounts. Only records matching a filesystem
// type filter are touched; everything else passes through verbatim.
package fstab

import (
	"strings"

	"github.com/archtune/archtune/internal/pkg/optionset"
)

// FieldCount is the number of fields of a well-formed mount record.
const FieldCount = 6

// Role classifies a mount record by its target path and selects which
// option rules apply to it.
type Role string

const (
	RoleRoot      Role = "root"
	RoleBoot      Role = "boot"
	RoleHome      Role = "home"
	RoleSecondary Role = "secondary"
)

// RoleOf derives the role of a mount record from its target path.
func RoleOf(target string) Role {
	switch target {
	case "/":
		return RoleRoot
	case "/boot", "/boot/efi", "/efi":
		return RoleBoot
	case "/home":
		return RoleHome
	}
	return RoleSecondary
}

// A Record is one parsed mount table entry.
type Record struct {
	Source  string
	Target  string
	FSType  string
	Options string
	Dump    string
	Pass    string
}

// parseRecord splits a line into a Record. It reports false for blank
// lines, comments, and lines with fewer than min fields.
func parseRecord(line string, min int) (Record, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Record{}, false
	}
	fields := strings.Fields(trimmed)
	if len(fields) < min {
		return Record{}, false
	}
	r := Record{Source: fields[0], Target: fields[1]}
	if len(fields) > 2 {
		r.FSType = fields[2]
	}
	if len(fields) > 3 {
		r.Options = fields[3]
	}
	if len(fields) > 4 {
		r.Dump = fields[4]
	}
	if len(fields) > 5 {
		r.Pass = fields[5]
	}
	return r, true
}

// Records parses all well-formed records in content. Lines that are
// blank, comments, or too short are skipped. Useful for reading
// /proc/self/mounts, whose records always carry all six fields.
func Records(content []byte) []Record {
	var records []Record
	for _, line := range strings.Split(string(content), "\n") {
		// Mount listings always have at least the first four fields.
		if r, ok := parseRecord(line, 4); ok {
			records = append(records, r)
		}
	}
	return records
}

// Lookup returns the first record mounted at target.
func Lookup(content []byte, target string) (Record, bool) {
	for _, r := range Records(content) {
		if r.Target == target {
			return r, true
		}
	}
	return Record{}, false
}

// Policy describes how matching records' option sets are rewritten.
type Policy struct {
	// FSType selects the records to rewrite by their type field.
	FSType string

	// Fields is the minimum number of whitespace-separated fields a
	// line must have to be considered a record. Shorter lines pass
	// through verbatim. Defaults to FieldCount.
	Fields int

	// RoleFn computes a record's role from its target field.
	// Defaults to RoleOf.
	RoleFn func(target string) Role

	// Options are the option-set rules, with per-role conditionals
	// keyed by the string form of the role.
	Options optionset.Rules
}

// Transform rewrites the options field of every record in content that
// matches the policy's filesystem type. Blank lines, comments, records
// of other types, and lines with too few fields are passed through
// byte-identical; line order is preserved. Rewritten lines use a
// single tab between fields, which any consumer of the format treats
// the same as the original separators.
func Transform(content []byte, p Policy) []byte {
	min := p.Fields
	if min <= 0 {
		min = FieldCount
	}
	// The type and options fields must exist for a rewrite to make sense.
	if min < 4 {
		min = 4
	}
	roleFn := p.RoleFn
	if roleFn == nil {
		roleFn = RoleOf
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < min || fields[2] != p.FSType {
			continue
		}
		role := roleFn(fields[1])
		fields[3] = optionset.Merge(fields[3], ",", p.Options, string(role))
		lines[i] = strings.Join(fields, "\t")
	}
	return []byte(strings.Join(lines, "\n"))
}
