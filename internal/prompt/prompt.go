// Package prompt assembles the natural-language instruction sent to the
// completion service. Two modes exist: grounded (with retrieved context)
// and question-only.
package prompt

import "fmt"

// Mode selects the prompt template.
type Mode int

const (
	// QuestionOnly interpolates only the question, with no instruction
	// to ground the answer in any document.
	QuestionOnly Mode = iota

	// WithContext interpolates retrieved context and instructs the
	// model to answer from it alone.
	WithContext
)

// withContextTemplate asks the model to answer strictly from the
// supplied context and to state explicitly when it is insufficient.
const withContextTemplate = `'You are an expert assistant extracting information from the context provided.
Answer the question based on the context. Be concise and do not hallucinate.
If you do not have the information just say so.
Context: %s
Question:
%s
Answer: '`

const questionOnlyTemplate = `'Question:
%s
Answer: '`

// Assemble formats the prompt for the given mode. contextText is
// ignored in QuestionOnly mode. No truncation or token-budget
// enforcement is applied; oversized contexts are passed through as-is.
func Assemble(question, contextText string, mode Mode) string {
	if mode == WithContext {
		return fmt.Sprintf(withContextTemplate, contextText, question)
	}
	return fmt.Sprintf(questionOnlyTemplate, question)
}
