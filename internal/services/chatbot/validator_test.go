package chatbot

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

func newTestValidator() *validator {
	return &validator{platformName: "CrewHub", logger: zerolog.Nop()}
}

func TestValidate_RejectsUnrelatedTopicInResponse(t *testing.T) {
	v := newTestValidator()
	query := "how do I use chat features"
	candidate := &models.LearnedResponse{
		ID:         "lr-1",
		Query:      "how to use chat",
		Response:   "I love talking about sports and football!",
		Similarity: 0.9,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.False(t, valid)
}

func TestValidate_AllowsTopicTheQueryRaised(t *testing.T) {
	v := newTestValidator()
	query := "do you have music playlists for the crew"
	candidate := &models.LearnedResponse{
		ID:         "lr-2",
		Query:      "music playlists",
		Response:   "We don't carry music playlists, but the schedule view covers your own crew.",
		Similarity: 0.9,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.True(t, valid)
}

func TestValidate_DenylistedTopicRejectedEvenWhenQueryRaisedIt(t *testing.T) {
	v := newTestValidator()
	query := "sports"
	candidate := &models.LearnedResponse{
		ID:         "lr-9",
		Query:      "sports",
		Response:   "yes i know about sports",
		Similarity: 0.9,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.False(t, valid)
}

func TestValidate_RejectsNonFeatureAnswerForFeatureQuery(t *testing.T) {
	v := newTestValidator()
	query := "how do I use the chat feature"
	candidate := &models.LearnedResponse{
		ID:         "lr-3",
		Query:      "how to use chat",
		Response:   "You should ask your manager about that one.",
		Similarity: 0.9,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.False(t, valid)
}

func TestValidate_RejectsLowSimilarity(t *testing.T) {
	v := newTestValidator()
	query := "how do I create a project"
	candidate := &models.LearnedResponse{
		ID:         "lr-4",
		Query:      "how to create a project",
		Response:   "Open the Projects tab and tap the + button.",
		Similarity: 0.4,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.False(t, valid)
}

func TestValidate_RejectsNoTermOverlap(t *testing.T) {
	v := newTestValidator()
	query := "how do I upload gallery photos"
	candidate := &models.LearnedResponse{
		ID:         "lr-5",
		Query:      "subscription billing question",
		Response:   "Billing details live under Account Settings in CrewHub.",
		Similarity: 0.9,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.False(t, valid)
}

func TestValidate_RejectsGenericRejectionForFeatureQuery(t *testing.T) {
	v := newTestValidator()
	query := "how do I use chat channels"
	candidate := &models.LearnedResponse{
		ID:         "lr-6",
		Query:      "chat channels setup",
		Response:   "Sorry, that's not the purpose of this chat.",
		Similarity: 0.9,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.False(t, valid)
}

func TestValidate_AcceptsRelevantCandidate(t *testing.T) {
	v := newTestValidator()
	query := "how do I create a project"
	candidate := &models.LearnedResponse{
		ID:         "lr-7",
		Query:      "how to create a project",
		Response:   "You can create a project from the Projects tab with the + button.",
		Similarity: 0.8,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.True(t, valid)
}

func TestValidate_SingleTermQuerySkipsOverlapCheck(t *testing.T) {
	v := newTestValidator()
	query := "timesheets"
	candidate := &models.LearnedResponse{
		ID:         "lr-8",
		Query:      "where are my hours tracked",
		Response:   "Timesheets roll up under the Time tab.",
		Similarity: 0.7,
	}

	valid := v.validate(query, candidate, ExtractKeyTerms(query))

	assert.True(t, valid)
}
