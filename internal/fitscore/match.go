package fitscore

import (
	"sort"
	"strings"
	"unicode"
)

func toSet(items ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range items {
		for _, item := range list {
			item = strings.ToLower(strings.TrimSpace(item))
			if item != "" {
				set[item] = struct{}{}
			}
		}
	}
	return set
}

// tokenize lowercases text, strips punctuation and drops stopwords and
// single-rune tokens. The result is sorted and de-duplicated.
func tokenize(stop map[string]struct{}, texts ...string) []string {
	seen := make(map[string]struct{})
	for _, text := range texts {
		fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, f := range fields {
			if len([]rune(f)) < 2 {
				continue
			}
			if _, ok := stop[f]; ok {
				continue
			}
			seen[f] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// containsPhrase reports whether needle occurs in haystack on word boundaries,
// so "housing" is found in "affordable housing" but "ai" is not found in "rain".
func containsPhrase(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

func inGroup(item string, group []string) bool {
	for _, member := range group {
		if item == member || containsPhrase(item, member) {
			return true
		}
	}
	return false
}

// related reports exact, containment or synonym-group equivalence of two
// normalized terms.
func related(a, b string, groups [][]string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b || containsPhrase(a, b) || containsPhrase(b, a) {
		return true
	}
	for _, g := range groups {
		if inGroup(a, g) && inGroup(b, g) {
			return true
		}
	}
	return false
}

// canonicalOrgType rewrites known spelling variants inside t.
func canonicalOrgType(t string) string {
	padded := " " + t + " "
	for alias, canonical := range organizationTypeAliases {
		padded = strings.ReplaceAll(padded, " "+alias+" ", " "+canonical+" ")
	}
	return strings.TrimSpace(padded)
}

// satisfiesOrgType reports whether an organization of type orgType meets an
// allowed type. The organization must be the same type or a more specific one.
func satisfiesOrgType(orgType, allowed string) bool {
	orgType, allowed = canonicalOrgType(orgType), canonicalOrgType(allowed)
	if orgType == "" || allowed == "" {
		return false
	}
	if orgType == allowed || containsPhrase(orgType, allowed) {
		return true
	}
	for _, specific := range organizationTypeHierarchy[allowed] {
		if orgType == specific || containsPhrase(orgType, specific) {
			return true
		}
	}
	return false
}

// anyRelated returns the first pair (in input order) that is related.
func anyRelated(left, right []string, groups [][]string) (string, string, bool) {
	for _, l := range left {
		for _, r := range right {
			if related(l, r, groups) {
				return l, r, true
			}
		}
	}
	return "", "", false
}
