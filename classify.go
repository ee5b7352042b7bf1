package plexus

import (
	"strings"

	"github.com/arloliu/plexus/types"
)

// writeKeywords force a statement onto a write-capable node when they
// appear anywhere in its text. Matching is plain substring matching, not
// tokenized: a keyword embedded inside another identifier still counts.
// This is a conservative, cheap static classification; plexus does not
// parse the query language.
var writeKeywords = []string{"CREATE", "SET", "MERGE", "DELETE", "CALL"}

// indexedStatement tags a statement with its 0-based position in the
// caller's original batch so results can be woven back into input order.
type indexedStatement struct {
	index     int
	statement types.Statement
}

// isWriteStatement reports whether the statement text requires a leader.
func isWriteStatement(text string) bool {
	for _, keyword := range writeKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}

// classifyStatements partitions a batch into read and write sets while
// preserving each statement's original position.
//
// Every input statement appears in exactly one of the returned sets, and
// relative order within each set matches input order. Classification
// never fails; an empty batch yields two empty sets.
func classifyStatements(statements []types.Statement) (reads, writes []indexedStatement) {
	for i, stmt := range statements {
		tagged := indexedStatement{index: i, statement: stmt}
		if isWriteStatement(stmt.Text) {
			writes = append(writes, tagged)
		} else {
			reads = append(reads, tagged)
		}
	}

	return reads, writes
}

// statementsOf extracts the plain statements of an indexed set in stored order.
func statementsOf(set []indexedStatement) []types.Statement {
	statements := make([]types.Statement, len(set))
	for i, tagged := range set {
		statements[i] = tagged.statement
	}

	return statements
}
