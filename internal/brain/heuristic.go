package brain

import (
	"context"
	"strings"
	"unicode"
)

const (
	generalLabel       = "General Discussion"
	maxFallbackTokens  = 4
	minSignificantRune = 3
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {}, "our": {}, "out": {},
	"has": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {}, "now": {}, "own": {},
	"say": {}, "she": {}, "too": {}, "use": {}, "who": {}, "why": {}, "yes": {}, "yet": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {}, "them": {}, "then": {},
	"than": {}, "have": {}, "been": {}, "were": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "there": {}, "their": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "about": {}, "into": {}, "only": {}, "also": {}, "just": {}, "more": {},
	"most": {}, "some": {}, "such": {}, "very": {}, "because": {}, "being": {}, "does": {},
	"doing": {}, "these": {}, "those": {}, "over": {}, "under": {}, "again": {}, "each": {},
	"other": {}, "your": {}, "think": {}, "really": {}, "much": {}, "many": {}, "make": {},
	"like": {}, "even": {}, "well": {}, "here": {}, "after": {}, "before": {}, "both": {},
}

// HeuristicClassifier is the deterministic fallback for the classification
// oracle. It never returns an error.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify picks the existing label sharing the most significant tokens with
// the text; ties go to the earliest label. With no overlap it proposes a new
// label built from the text's leading significant tokens.
func (h *HeuristicClassifier) Classify(_ context.Context, req ClassifyRequest) (Classification, error) {
	textTokens := significantTokens(req.Text)
	textSet := make(map[string]struct{}, len(textTokens))
	for _, t := range textTokens {
		textSet[t] = struct{}{}
	}

	bestScore := 0
	bestIndex := -1
	for i, label := range req.ExistingLabels {
		score := 0
		seen := map[string]struct{}{}
		for _, t := range significantTokens(label) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if _, ok := textSet[t]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex >= 0 {
		matched := req.ExistingLabels[bestIndex]
		return Classification{MatchedLabel: &matched, ProposedLabel: matched}, nil
	}

	return Classification{ProposedLabel: LabelFromText(req.Text)}, nil
}

// LabelFromText title-cases up to four leading significant tokens of text.
func LabelFromText(text string) string {
	tokens := significantTokens(text)
	if len(tokens) == 0 {
		return generalLabel
	}
	if len(tokens) > maxFallbackTokens {
		tokens = tokens[:maxFallbackTokens]
	}
	words := make([]string, len(tokens))
	for i, t := range tokens {
		r := []rune(t)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// significantTokens lowercases text, splits on anything that is not a letter
// or digit, and drops short tokens and stop words.
func significantTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < minSignificantRune {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
