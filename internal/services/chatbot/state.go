package chatbot

import (
	"regexp"
	"strings"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

// Conversational small-talk patterns, anchored at message start.
var conversationalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hello|hey|howdy|yo)\b`),
	regexp.MustCompile(`^(how are you|how's it going|how is it going|how are things|hows it going)`),
	regexp.MustCompile(`^(what's up|whats up|sup|wassup)`),
	regexp.MustCompile(`^(good morning|good afternoon|good evening)`),
	regexp.MustCompile(`^(nice to meet you|haha|lol)\b`),
}

// Closure patterns ending a conversation, anchored at message start.
var closurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(that'?s all|that is all)\b`),
	regexp.MustCompile(`^(no thanks|no thank you|nope)\b`),
	regexp.MustCompile(`^(nothing else|nothing more)\b`),
	regexp.MustCompile(`^(i'?m good|i am good|all good)\b`),
	regexp.MustCompile(`^(bye|goodbye|see you|later)\b`),
	regexp.MustCompile(`^(ok|okay|got it|alright|cool|great|perfect|thanks|thank you)[.!\s]*$`),
}

// Prefixes that suggest the user is continuing the previous exchange.
var followUpPrefixes = []string{
	"why", "how", "and ", "can you", "what about", "does it", "is it",
	"but ", "so ",
}

// Phrases anywhere in the message that indicate continuation.
var followUpPhrases = []string{
	" also", " instead", " again", " too", " as well", " the same",
}

// Standalone pronouns that need an antecedent from earlier turns.
var followUpPronouns = []string{
	"it", "they", "this", "that", "them", "these", "those",
}

// Concrete subjects whose presence means a pronoun is not dangling.
var concreteSubjects = []string{
	"project", "task", "team", "feature", "chat", "message", "report",
	"schedule", "checklist", "crewhub",
}

// isConversational reports whether a message is small talk.
func isConversational(message string) bool {
	normalized := normalizeMessage(message)
	for _, p := range conversationalPatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// isClosure reports whether a message ends the conversation.
func isClosure(message string) bool {
	normalized := normalizeMessage(message)
	for _, p := range closurePatterns {
		if p.MatchString(normalized) {
			return true
		}
	}
	return false
}

// isFollowUp reports whether a message continues the recent exchange.
// Requires at least two prior turns with both sides represented among
// the last three.
func isFollowUp(message string, history []models.HistoryEntry) bool {
	if len(history) < 2 {
		return false
	}

	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	var sawUser, sawBot bool
	for _, entry := range recent {
		switch entry.Sender {
		case models.SenderUser:
			sawUser = true
		case models.SenderBot:
			sawBot = true
		}
	}
	if !sawUser || !sawBot {
		return false
	}

	normalized := normalizeMessage(message)

	if len(strings.Fields(normalized)) <= 3 {
		return true
	}

	for _, prefix := range followUpPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}

	for _, phrase := range followUpPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}

	// A dangling pronoun with no concrete subject in the same message
	// must refer back to an earlier turn.
	words := strings.Fields(normalized)
	hasPronoun := false
	for _, w := range words {
		for _, pronoun := range followUpPronouns {
			if w == pronoun {
				hasPronoun = true
			}
		}
	}
	if hasPronoun {
		for _, subject := range concreteSubjects {
			if strings.Contains(normalized, subject) {
				return false
			}
		}
		return true
	}

	return false
}

// normalizeMessage lower-cases and trims a message for pattern checks.
func normalizeMessage(message string) string {
	return strings.TrimSpace(strings.ToLower(message))
}
