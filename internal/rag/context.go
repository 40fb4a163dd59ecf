package rag

import "strings"

// BuildContext concatenates the retrieved chunk texts into the context
// string and returns it with the rank-1 chunk's source path.
//
// Only the first len-1 chunks are concatenated: the lowest-ranked of
// the retrieved rows is dropped. This reproduces the behavior of the
// dashboard this service replaced, and the parity is pinned by tests;
// see the package tests before changing it.
//
// Single quotes are stripped from the concatenated text because the
// assembled prompt wraps the whole body in single quotes.
func BuildContext(res Result) (contextText, topPath string) {
	if len(res.Chunks) == 0 {
		return "", ""
	}

	var b strings.Builder
	for _, c := range res.Chunks[:len(res.Chunks)-1] {
		b.WriteString(c.Text)
	}

	contextText = strings.ReplaceAll(b.String(), "'", "")
	topPath = res.Chunks[0].RelativePath
	return contextText, topPath
}
