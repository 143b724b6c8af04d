// Package query extracts, validates, bounds and executes model-generated
// SQL, and formats the returned rows for human legibility.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

const queryKeyword = "SELECT"

var (
	limitClauseRe = regexp.MustCompile(`(?i)\blimit\s+\d+`)
	sqlPrefixRe   = regexp.MustCompile(`(?i)^sql\b`)
)

// Extract pulls a SELECT statement out of raw model output.
//
// Fenced code blocks are searched first: the winner is the first fenced
// segment whose content contains the query keyword, not necessarily the
// first block overall. Text without fences is treated as a bare candidate.
// A leading "sql" dialect token is stripped either way.
func Extract(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &Error{Kind: KindInvalidShape, Message: "empty model output"}
	}

	if strings.Contains(text, "```") {
		segment, found := fencedSegmentWithKeyword(text)
		if !found {
			return "", &Error{Kind: KindInvalidShape, Message: "no fenced block contains a " + queryKeyword + " statement"}
		}
		text = segment
	}

	text = strings.TrimSpace(sqlPrefixRe.ReplaceAllString(text, ""))

	if !strings.HasPrefix(strings.ToUpper(text), queryKeyword) {
		return "", &Error{
			Kind:    KindInvalidShape,
			Message: fmt.Sprintf("generated text does not start with %s", queryKeyword),
		}
	}

	return text, nil
}

// fencedSegmentWithKeyword returns the first fenced segment containing the
// query keyword. Segments alternate with prose when splitting on the fence
// delimiter: odd indices are fenced content.
func fencedSegmentWithKeyword(text string) (string, bool) {
	parts := strings.Split(text, "```")
	for i := 1; i < len(parts); i += 2 {
		content := strings.TrimSpace(parts[i])
		if strings.Contains(strings.ToUpper(content), queryKeyword) {
			return content, true
		}
	}
	return "", false
}

// EnsureLimit appends a row bound when the query has no limit clause.
// Queries that already carry one are returned unchanged.
func EnsureLimit(q string, n int) string {
	if limitClauseRe.MatchString(q) {
		return q
	}
	q = strings.TrimRight(strings.TrimSpace(q), ";")
	return fmt.Sprintf("%s LIMIT %d", q, n)
}

// QualifyTable rewrites bare references to the trips table with its fully
// qualified name. References that are already qualified (preceded by a dot
// or backtick) are left alone.
func QualifyTable(q, bare, qualified string) string {
	if bare == "" || qualified == "" || bare == qualified {
		return q
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(bare) + `\b`)
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(q, -1) {
		start, end := loc[0], loc[1]
		if start > 0 {
			prev := q[start-1]
			if prev == '.' || prev == '`' || prev == '"' {
				continue
			}
		}
		if end < len(q) && q[end] == '.' {
			// Reference like trips.fare_amount still names the bare table.
			b.WriteString(q[last:start])
			b.WriteString(qualified)
			last = start + len(bare)
			continue
		}
		b.WriteString(q[last:start])
		b.WriteString(qualified)
		last = end
	}
	b.WriteString(q[last:])
	return b.String()
}
