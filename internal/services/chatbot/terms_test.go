package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeyTerms_DropsStopwordsAndShortTokens(t *testing.T) {
	terms := ExtractKeyTerms("I was really going to make something for the crew")

	assert.Contains(t, terms, "crew")
	assert.NotContains(t, terms, "really")
	assert.NotContains(t, terms, "going")
	assert.NotContains(t, terms, "something")
	assert.NotContains(t, terms, "the")
}

func TestExtractKeyTerms_KeepsPreservedAndBusinessTerms(t *testing.T) {
	terms := ExtractKeyTerms("How do I create a new project?")

	assert.Contains(t, terms, "how")
	assert.Contains(t, terms, "create")
	assert.Contains(t, terms, "project")
	// "do", "i", "a" and "new" are too short and not preserved
	assert.NotContains(t, terms, "do")
	assert.NotContains(t, terms, "new")
}

func TestExtractKeyTerms_AppendsActionPhrases(t *testing.T) {
	terms := ExtractKeyTerms("How do I create a new project?")

	assert.Contains(t, terms, "how do i")
}

func TestExtractKeyTerms_Deduplicates(t *testing.T) {
	terms := ExtractKeyTerms("project project PROJECT")

	assert.Equal(t, []string{"project"}, terms)
}

func TestExtractKeyTerms_StripsPunctuation(t *testing.T) {
	terms := ExtractKeyTerms("schedule, shifts!!")

	assert.Contains(t, terms, "schedule")
	assert.Contains(t, terms, "shifts")
}

func TestExtractKeyTerms_TrimsApostrophes(t *testing.T) {
	terms := ExtractKeyTerms("the crew's timesheet")

	assert.Contains(t, terms, "crew's")
	assert.Contains(t, terms, "timesheet")
}

func TestExtractKeyTerms_EmptyMessage(t *testing.T) {
	assert.Empty(t, ExtractKeyTerms(""))
	assert.Empty(t, ExtractKeyTerms("   !?!  "))
}
