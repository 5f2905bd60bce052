package chatbot

import "strings"

// scoreMatch computes a 0-1 relevance score between extracted terms and
// a rule's keyword set. Precedence: exact joined match, phrase bonuses,
// single-term exact, then per-term exact/sub-word/partial/fuzzy
// accumulation with short-query adjustments.
func scoreMatch(terms, keywords []string) float64 {
	if len(terms) == 0 || len(keywords) == 0 {
		return 0
	}

	joined := strings.Join(terms, " ")

	// Whole-query equality with any keyword is a perfect match.
	for _, kw := range keywords {
		if joined == kw {
			return 1.0
		}
	}

	// Multi-word keywords found inside the joined terms earn a phrase bonus.
	var phrase float64
	for _, kw := range keywords {
		if strings.Contains(kw, " ") && strings.Contains(joined, kw) {
			phrase += 1.5
		}
	}

	if len(terms) == 1 {
		for _, kw := range keywords {
			if terms[0] == kw {
				return 0.9
			}
		}
	}

	kwSet := map[string]bool{}
	subWords := map[string]bool{}
	for _, kw := range keywords {
		kwSet[kw] = true
		if strings.Contains(kw, " ") {
			for _, part := range strings.Fields(kw) {
				subWords[part] = true
			}
		}
	}

	var exact, partial float64
	var exactCount int
	for _, term := range terms {
		if len(term) <= 2 {
			continue
		}
		if kwSet[term] {
			exact += 1.0
			exactCount++
			continue
		}
		if subWords[term] {
			exact += 0.8
			continue
		}

		matched := false
		for _, kw := range keywords {
			if strings.HasPrefix(kw, term) || strings.HasSuffix(kw, term) ||
				strings.HasPrefix(term, kw) || strings.HasSuffix(term, kw) {
				partial += 0.7
				matched = true
				break
			}
			if strings.Contains(kw, term) || strings.Contains(term, kw) {
				partial += 0.4
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		for _, kw := range keywords {
			if fuzzyVariant(term, kw) {
				partial += 0.3
				break
			}
		}
	}

	total := exact + 0.6*partial + phrase
	divisor := float64(len(terms)) + 0.5*float64(len(keywords)) - 0.2*phrase
	if divisor <= 0 {
		divisor = 1
	}
	score := total / divisor

	if len(terms) <= 3 {
		score += 0.15
	}
	if phrase > 0 {
		score += 0.2
	}
	if float64(exactCount) > float64(len(terms))/2 {
		score += 0.1
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// fuzzyVariant reports whether two words differ only by a pluralization,
// gerund, past-tense or y/ies suffix transform.
func fuzzyVariant(a, b string) bool {
	if a == b {
		return false
	}
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		shorter, longer := pair[0], pair[1]
		if shorter+"s" == longer || shorter+"ing" == longer || shorter+"ed" == longer {
			return true
		}
		if strings.HasSuffix(shorter, "y") && strings.TrimSuffix(shorter, "y")+"ies" == longer {
			return true
		}
	}
	return false
}
