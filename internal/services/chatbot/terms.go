// Package chatbot implements the rule-based response engine: term
// extraction, relevance scoring, conversation-state analysis, learned
// response validation and the orchestration pipeline that ties them to
// the message store and knowledge base.
package chatbot

import "strings"

// preservedTerms are kept regardless of length: interrogatives, courtesy
// words and action verbs that carry intent.
var preservedTerms = map[string]bool{
	"what": true, "when": true, "where": true, "who": true, "why": true,
	"how": true, "which": true, "can": true, "could": true, "would": true,
	"should": true, "will": true, "does": true, "is": true, "are": true,
	"please": true, "thanks": true, "thank": true, "hello": true,
	"hi": true, "hey": true, "bye": true, "goodbye": true,
	"create": true, "add": true, "delete": true, "remove": true,
	"edit": true, "update": true, "view": true, "show": true,
	"find": true, "search": true, "send": true, "assign": true,
	"upload": true, "start": true, "track": true, "manage": true,
	"schedule": true, "invite": true, "offer": true, "help": true,
	"need": true, "want": true, "use": true,
}

// businessTerms are domain nouns always worth matching on.
var businessTerms = map[string]bool{
	"project": true, "projects": true, "task": true, "tasks": true,
	"team": true, "teams": true, "chat": true, "message": true,
	"messages": true, "gallery": true, "photo": true, "photos": true,
	"checklist": true, "checklists": true, "supply": true,
	"supplies": true, "request": true, "requests": true, "report": true,
	"reports": true, "dashboard": true, "timesheet": true, "clock": true,
	"shift": true, "shifts": true, "safety": true, "osha": true,
	"compliance": true, "inspection": true, "checkin": true,
	"member": true, "members": true, "time": true, "client": true,
	"clients": true, "family": true, "subscription": true,
	"billing": true, "account": true, "feature": true, "features": true,
	"communication": true, "notification": true, "notifications": true,
	"crew": true, "job": true, "jobs": true, "site": true,
}

// stopwords are discarded unless preserved or a business term.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "our": true, "out": true,
	"get": true, "has": true, "had": true, "was": true, "this": true,
	"that": true, "with": true, "have": true, "from": true, "they": true,
	"your": true, "just": true, "like": true, "some": true, "them": true,
	"than": true, "then": true, "were": true, "been": true, "about": true,
	"there": true, "their": true, "really": true, "very": true,
	"much": true, "more": true, "into": true, "also": true, "only": true,
	"over": true, "such": true, "make": true, "made": true, "know": true,
	"think": true, "going": true, "something": true, "anything": true,
}

// actionPhrases are multi-word intent markers matched against the raw
// lower-cased message and appended as whole tokens.
var actionPhrases = []string{
	"how to",
	"how do i",
	"do you offer",
	"do you have",
	"can i",
	"is there",
	"what is",
	"tell me about",
	"show me",
	"i need",
	"i want to",
	"help me",
}

// ExtractKeyTerms tokenizes a free-text message into a deduplicated set
// of significant terms. Pure function, no ordering guarantee.
func ExtractKeyTerms(message string) []string {
	lowered := strings.ToLower(message)

	var b strings.Builder
	for _, r := range lowered {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	seen := map[string]bool{}
	var terms []string
	add := func(term string) {
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, tok := range strings.Fields(b.String()) {
		tok = strings.Trim(tok, "'")
		switch {
		case preservedTerms[tok]:
			add(tok)
		case businessTerms[tok]:
			add(tok)
		case len(tok) > 3 && !stopwords[tok]:
			add(tok)
		}
	}

	// Whole action phrases ride along as additional tokens.
	for _, phrase := range actionPhrases {
		if strings.Contains(lowered, phrase) {
			add(phrase)
		}
	}

	return terms
}
