package models

// AnswerSheet maps a question id to the user's current answer.
//
// For single and multiple questions the list holds the selected option labels.
// For dropdown and drag_drop questions it is positional: entry i belongs to
// dropdown i / drop zone i and the empty string means the slot is unset.
type AnswerSheet map[string][]string

// Get returns the answer recorded for a question, never nil.
func (a AnswerSheet) Get(questionID string) []string {
	if ans, ok := a[questionID]; ok && ans != nil {
		return ans
	}
	return []string{}
}

// Clone deep-copies the sheet.
func (a AnswerSheet) Clone() AnswerSheet {
	out := make(AnswerSheet, len(a))
	for id, ans := range a {
		out[id] = append([]string{}, ans...)
	}
	return out
}

// Padded returns a copy of answer grown with empty strings to at least size entries.
func Padded(answer []string, size int) []string {
	n := len(answer)
	if size > n {
		n = size
	}
	out := make([]string, n)
	copy(out, answer)
	return out
}
