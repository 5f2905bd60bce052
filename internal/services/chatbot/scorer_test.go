package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreMatch_WholeQueryEquality(t *testing.T) {
	score := scoreMatch([]string{"hello"}, []string{"hello", "hi"})

	assert.Equal(t, 1.0, score)
}

func TestScoreMatch_EmptyInputs(t *testing.T) {
	assert.Equal(t, 0.0, scoreMatch(nil, []string{"project"}))
	assert.Equal(t, 0.0, scoreMatch([]string{"project"}, nil))
}

func TestScoreMatch_ExactTermsWithMajorityBonus(t *testing.T) {
	// exact=2, divisor=3, plus short-query and exact-majority bonuses
	score := scoreMatch([]string{"task", "tasks"}, []string{"task", "tasks"})

	assert.InDelta(t, 0.9167, score, 0.001)
}

func TestScoreMatch_PhraseBonusClampsAtOne(t *testing.T) {
	score := scoreMatch(
		[]string{"create", "new", "project"},
		[]string{"new project", "project"},
	)

	assert.Equal(t, 1.0, score)
}

func TestScoreMatch_UnrelatedStaysBelowThreshold(t *testing.T) {
	score := scoreMatch([]string{"banana"}, []string{"project"})

	// Only the short-query bonus applies.
	assert.InDelta(t, 0.15, score, 0.001)
	assert.Less(t, score, nlpScoreThreshold)
}

func TestScoreMatch_PartialPrefixMatch(t *testing.T) {
	score := scoreMatch(
		[]string{"scheduling", "crew", "site", "today"},
		[]string{"schedule"},
	)

	assert.Greater(t, score, 0.0)
	assert.Less(t, score, nlpScoreThreshold)
}

func TestScoreMatch_TimeQueryClearsThreshold(t *testing.T) {
	terms := ExtractKeyTerms("how do I track time")
	keywords := []string{"time", "timesheet", "clock", "clock in", "clock out", "hours", "tracking", "track time"}

	score := scoreMatch(terms, keywords)

	assert.Greater(t, score, nlpScoreThreshold)
}

func TestFuzzyVariant(t *testing.T) {
	assert.True(t, fuzzyVariant("task", "tasks"))
	assert.True(t, fuzzyVariant("tasks", "task"))
	assert.True(t, fuzzyVariant("track", "tracked"))
	assert.True(t, fuzzyVariant("track", "tracking"))
	assert.True(t, fuzzyVariant("company", "companies"))
	assert.False(t, fuzzyVariant("task", "task"))
	assert.False(t, fuzzyVariant("task", "project"))
}
