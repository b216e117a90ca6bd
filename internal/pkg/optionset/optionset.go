// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

// Package optionset merges delimited option tokens, such as the
// comma-separated options field of a mount table entry or the
// space-separated parameters of a kernel command line. Tokens are
// either bare flags ("noatime") or key=value pairs ("compress=zstd:3").
package optionset

import (
	"sort"
	"strings"
)

// RoleRules are additions and removals that only apply to records of
// one role.
type RoleRules struct {
	Add    []string
	Remove []string
}

// Rules describe a desired option-set mutation.
type Rules struct {
	// StripPrefixes lists key prefixes (including the "=", such as
	// "compress=") whose tokens are removed before any additions. A
	// key covered by a strip prefix is single-valued: after the merge
	// at most one token with that prefix survives.
	StripPrefixes []string

	// Remove lists exact tokens that are always dropped, such as a
	// "defaults" placeholder that is redundant once explicit options
	// are present.
	Remove []string

	// Add lists tokens that are always added. Additions win over
	// removals.
	Add []string

	// PerRole holds additional rules keyed by record role.
	PerRole map[string]RoleRules
}

// Set is a deduplicated collection of option tokens.
type Set struct {
	tokens map[string]struct{}
}

// Parse splits s on sep into a Set. Empty tokens and surrounding
// whitespace are dropped.
func Parse(s, sep string) *Set {
	set := &Set{tokens: map[string]struct{}{}}
	for _, token := range strings.Split(s, sep) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		set.tokens[token] = struct{}{}
	}
	return set
}

// Has reports whether the exact token is in the set.
func (s *Set) Has(token string) bool {
	_, ok := s.tokens[token]
	return ok
}

// Add inserts the given tokens.
func (s *Set) Add(tokens ...string) {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		s.tokens[token] = struct{}{}
	}
}

// Remove deletes the given tokens. Unknown tokens are ignored.
func (s *Set) Remove(tokens ...string) {
	for _, token := range tokens {
		delete(s.tokens, token)
	}
}

// StripPrefix removes every token starting with prefix.
func (s *Set) StripPrefix(prefix string) {
	for token := range s.tokens {
		if strings.HasPrefix(token, prefix) {
			delete(s.tokens, token)
		}
	}
}

// Tokens returns the tokens in lexicographic order.
func (s *Set) Tokens() []string {
	tokens := make([]string, 0, len(s.tokens))
	for token := range s.tokens {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Join serializes the set in lexicographic order with the given
// separator, so repeated merges produce identical output.
func (s *Set) Join(sep string) string {
	return strings.Join(s.Tokens(), sep)
}

// Merge applies rules to the option tokens in current and returns the
// re-serialized result. The rules are applied in strip, add,
// role-conditional order; the output is deduplicated and sorted. An
// empty current yields just the additions.
func Merge(current, sep string, rules Rules, role string) string {
	set := Parse(current, sep)
	for _, prefix := range rules.StripPrefixes {
		set.StripPrefix(prefix)
	}
	set.Remove(rules.Remove...)
	set.Add(rules.Add...)
	if roleRules, ok := rules.PerRole[role]; ok {
		set.Add(roleRules.Add...)
		set.Remove(roleRules.Remove...)
	}
	return set.Join(sep)
}
