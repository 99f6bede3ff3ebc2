package recipe

import "strings"

// CodeKind classifies a material code by its leading letter.
type CodeKind int

const (
	CodeMaterial CodeKind = iota
	// CodeSemiFinished codes (F...) are recipes used as ingredients.
	CodeSemiFinished
	// CodeFinished codes (G...) are finished-goods recipes.
	CodeFinished
)

// KindOf returns the classification of code.
func KindOf(code string) CodeKind {
	switch {
	case strings.HasPrefix(code, "F"):
		return CodeSemiFinished
	case strings.HasPrefix(code, "G"):
		return CodeFinished
	default:
		return CodeMaterial
	}
}

// MaterialTypeTag returns "F" or "M" for codes starting with those letters and
// "" otherwise.
func MaterialTypeTag(code string) string {
	switch {
	case strings.HasPrefix(code, "F"):
		return "F"
	case strings.HasPrefix(code, "M"):
		return "M"
	default:
		return ""
	}
}
