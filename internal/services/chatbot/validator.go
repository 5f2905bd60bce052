package chatbot

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// minLearnedSimilarity is the floor below which a learned pair is not
// trusted for reuse.
const minLearnedSimilarity = 0.6

// Soft off-topic list. A learned response mentioning one of these is
// rejected unless the query itself brought the topic up.
var unrelatedTopics = []string{
	"sports", "weather", "cooking", "politics", "entertainment",
	"music", "movies",
}

// badResponseRegexes is the denylist the cleanup job also runs against
// the learned store. A response matching it is never reused, even when
// the query raised the topic.
var badResponseRegexes = compilePatterns(badResponsePatterns)

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Platform feature vocabulary used for relevance cross-checks.
var featureTerms = []string{
	"chat", "project", "task", "time", "team", "report", "dashboard",
	"communication",
}

// Generic rejection phrasings that should never be reused for a concrete
// feature question.
var genericRejections = []string{
	"purpose of this chat",
	"i can only help with",
	"not able to help with that",
	"outside the scope",
}

// validator decides whether a learned query/response pair is trustworthy
// enough to reuse for the current query. It guards against drift in the
// self-learning response store.
type validator struct {
	platformName string
	logger       zerolog.Logger
}

// validate returns false when the candidate should not be reused. Every
// rejection is logged at warn level with its reason.
func (v *validator) validate(query string, candidate *models.LearnedResponse, queryTerms []string) bool {
	queryLower := strings.ToLower(query)
	responseLower := strings.ToLower(candidate.Response)

	for _, re := range badResponseRegexes {
		if re.MatchString(responseLower) {
			v.reject(query, candidate.ID, "response matches off-topic denylist")
			return false
		}
	}

	for _, topic := range unrelatedTopics {
		if strings.Contains(responseLower, topic) && !strings.Contains(queryLower, topic) {
			v.reject(query, candidate.ID, "response mentions unrelated topic: "+topic)
			return false
		}
	}

	if containsFeatureTerm(queryTerms) &&
		!containsAnyTerm(responseLower, featureTerms) &&
		!strings.Contains(responseLower, strings.ToLower(v.platformName)) {
		v.reject(query, candidate.ID, "feature query answered by non-feature response")
		return false
	}

	if candidate.Similarity > 0 && candidate.Similarity < minLearnedSimilarity {
		v.reject(query, candidate.ID, "similarity below threshold")
		return false
	}

	// Single-term queries are too short to judge overlap reliably.
	if len(queryTerms) > 1 && !sharesSignificantTerm(queryTerms, ExtractKeyTerms(candidate.Query)) {
		v.reject(query, candidate.ID, "no term overlap with original query")
		return false
	}

	if containsFeatureTerm(queryTerms) {
		for _, rejection := range genericRejections {
			if strings.Contains(responseLower, rejection) {
				v.reject(query, candidate.ID, "generic rejection reused for feature query")
				return false
			}
		}
	}

	return true
}

func (v *validator) reject(query, candidateID, reason string) {
	v.logger.Warn().
		Str("query", query).
		Str("candidate_id", candidateID).
		Str("reason", reason).
		Msg("learned response rejected")
}

// containsFeatureTerm reports whether any extracted term is (or contains)
// a platform feature term.
func containsFeatureTerm(terms []string) bool {
	for _, term := range terms {
		for _, feat := range featureTerms {
			if term == feat || strings.Contains(term, feat) {
				return true
			}
		}
	}
	return false
}

// containsAnyTerm reports whether text mentions any of the given terms.
func containsAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// sharesSignificantTerm reports whether the two term sets share at least
// one term longer than three characters.
func sharesSignificantTerm(a, b []string) bool {
	set := map[string]bool{}
	for _, t := range a {
		if len(t) > 3 {
			set[t] = true
		}
	}
	for _, t := range b {
		if len(t) > 3 && set[t] {
			return true
		}
	}
	return false
}
