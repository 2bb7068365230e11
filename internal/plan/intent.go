package plan

import "strings"

// missingContentKeywords signal that the learner thinks part of the book
// is absent from the plan.
var missingContentKeywords = []string{
	"miss",
	"missing",
	"forgot",
	"left out",
	"not included",
	"cut off",
	"incomplete",
}

// IsMissingContentIntent reports whether an edit instruction complains about
// missing content.
func IsMissingContentIntent(instruction string) bool {
	lower := strings.ToLower(instruction)
	for _, kw := range missingContentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
