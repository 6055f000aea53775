// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

import (
	"crypto/md5" // nolint: gosec -- content-addressed fallback key, not a security use
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	openOnlyRe  = regexp.MustCompile(`^<([^/>](?:[^>]*[^/>])?)>$`)
	closeOnlyRe = regexp.MustCompile(`^</([^>]*)>$`)
)

// RuleSingle and RuleContent are the two special single-element sort rules;
// any other rule is an ordered list of tag names to search for.
const (
	RuleSingle  = "#SINGLE#"
	RuleContent = "#CONTENT#"
)

// SynthesizeKey computes (key, shape) for a sub-section's content per a
// resolved sort rule (spec.md §4.2). rule is mdconfig.Options.Sort.
func SynthesizeKey(content string, rule []string) (string, Shape) {
	lines := splitLinesKeep(content)
	body := lines
	if len(lines) >= 2 {
		first := strings.TrimSpace(lines[0])
		last := strings.TrimSpace(lines[len(lines)-1])
		if openOnlyRe.MatchString(first) && closeOnlyRe.MatchString(last) {
			body = lines[1 : len(lines)-1]
		}
	}

	shape := SIMPLE
	depth := 0
	var paramLines []string
	for _, line := range body {
		trimmed := strings.TrimSpace(line)
		switch {
		case openOnlyRe.MatchString(trimmed):
			depth++
			shape = COMPLEX
		case closeOnlyRe.MatchString(trimmed):
			depth--
		default:
			if depth == 0 {
				paramLines = append(paramLines, line)
			}
		}
	}
	region := strings.Join(paramLines, "\n")

	if len(rule) == 1 && rule[0] == RuleSingle {
		return LevelSingle, shape
	}
	if !(len(rule) == 1 && rule[0] == RuleContent) {
		for _, tag := range rule {
			if key, ok := findTagValue(region, tag); ok {
				return key, shape
			}
		}
	}
	return md5Fallback(content), shape
}

// findTagValue returns the text between the first `<tag>` in region and the
// next `<` after it.
func findTagValue(region, tag string) (string, bool) {
	open := "<" + tag + ">"
	idx := strings.Index(region, open)
	if idx < 0 {
		return "", false
	}
	rest := region[idx+len(open):]
	next := strings.IndexByte(rest, '<')
	if next < 0 {
		return "", false
	}
	return rest[:next], true
}

// md5Fallback strips leading whitespace from every line, removes line
// breaks, and returns the hex MD5 of the result: exactly 32 lowercase hex
// characters, the encoding isMD5FallbackKey detects.
func md5Fallback(content string) string {
	var b strings.Builder
	for _, line := range splitLinesKeep(content) {
		b.WriteString(strings.TrimLeft(line, " \t"))
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// splitLinesKeep splits content into lines, dropping the single trailing
// empty element a final newline produces, and stripping a trailing \r so
// CRLF input doesn't leak into extracted tag values.
func splitLinesKeep(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
