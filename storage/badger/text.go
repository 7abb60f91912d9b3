package badger

import (
	"strings"
	"unicode"
)

// stopWords carry no signal for matching questions against meeting records.
var stopWords = func() map[string]struct{} {
	words := strings.Fields(`
		a about an and are as at be but by can did do does for from had has
		have how i in is it its me my not of on or our that the their them
		there they this to was we were what when where which who why will
		with you your`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// tokenize lowercases text and splits it on anything that is not a letter or
// digit, dropping stop words and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func termFrequencies(terms []string) map[string]int {
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	return tf
}
