package ranking

import "unicode"

type runeClass int

const (
	classNone runeClass = iota
	classLower
	classUpper
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsLetter(r):
		// Lower-case and caseless letters both continue a word.
		return classLower
	default:
		return classNone
	}
}

// SplitCamelCase splits a single word into sub-words in one pass over its runes.
//
// A new token starts before an upper-case letter that follows a lower-case letter or
// digit, and before the last letter of an upper-case run when a lower-case letter
// follows it ("XMLParser" -> "XML", "Parser"). Digit runs are tokens of their own and
// any other rune separates tokens. Returns nil when word has no letters or digits.
func SplitCamelCase(word string) []string {
	runes := []rune(word)
	var tokens []string
	start := -1
	prev := classNone

	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		class := classify(r)
		if class == classNone {
			flush(i)
			prev = classNone
			continue
		}
		if start >= 0 {
			switch class {
			case classUpper:
				if prev == classLower || prev == classDigit {
					flush(i)
				} else if prev == classUpper && i+1 < len(runes) && classify(runes[i+1]) == classLower {
					flush(i)
				}
			case classLower:
				if prev == classDigit {
					flush(i)
				}
			case classDigit:
				if prev != classDigit {
					flush(i)
				}
			}
		}
		if start < 0 {
			start = i
		}
		prev = class
	}
	flush(len(runes))
	return tokens
}
