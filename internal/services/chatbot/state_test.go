package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crewhub/chatbot-service/internal/domain/models"
)

func TestIsClosure(t *testing.T) {
	closures := []string{
		"bye",
		"Goodbye!",
		"that's all",
		"no thanks",
		"nothing else",
		"I'm good",
		"thanks!",
		"ok",
		"THANKS",
	}
	for _, msg := range closures {
		assert.True(t, isClosure(msg), "expected closure: %q", msg)
	}

	notClosures := []string{
		"thanks for the help, how do I add a task?",
		"okay but what about reports",
		"how do I create a project",
		"",
	}
	for _, msg := range notClosures {
		assert.False(t, isClosure(msg), "expected non-closure: %q", msg)
	}
}

func TestIsConversational(t *testing.T) {
	assert.True(t, isConversational("hello there"))
	assert.True(t, isConversational("Hey!"))
	assert.True(t, isConversational("how are you doing today"))
	assert.True(t, isConversational("what's up"))
	assert.True(t, isConversational("good morning"))

	assert.False(t, isConversational("how do I invite my crew"))
	assert.False(t, isConversational("show me the schedule"))
}

func twoTurnHistory() []models.HistoryEntry {
	return []models.HistoryEntry{
		{Sender: models.SenderUser, Content: "how do I create a project"},
		{Sender: models.SenderBot, Content: "Open the Projects tab and tap the + button."},
	}
}

func TestIsFollowUp_RequiresHistory(t *testing.T) {
	assert.False(t, isFollowUp("why", nil))
	assert.False(t, isFollowUp("why", []models.HistoryEntry{
		{Sender: models.SenderUser, Content: "hello"},
	}))
}

func TestIsFollowUp_RequiresBothSenders(t *testing.T) {
	history := []models.HistoryEntry{
		{Sender: models.SenderUser, Content: "hello"},
		{Sender: models.SenderUser, Content: "anyone there"},
	}

	assert.False(t, isFollowUp("why", history))
}

func TestIsFollowUp_ShortMessage(t *testing.T) {
	assert.True(t, isFollowUp("why", twoTurnHistory()))
	assert.True(t, isFollowUp("and then?", twoTurnHistory()))
}

func TestIsFollowUp_Prefix(t *testing.T) {
	assert.True(t, isFollowUp("can you show me where that button is", twoTurnHistory()))
	assert.True(t, isFollowUp("what about adding tasks to one of them", twoTurnHistory()))
}

func TestIsFollowUp_DanglingPronoun(t *testing.T) {
	assert.True(t, isFollowUp("where exactly would it show up after", twoTurnHistory()))
}

func TestIsFollowUp_ConcreteSubjectIsNotFollowUp(t *testing.T) {
	assert.False(t, isFollowUp("where would the project gallery show it exactly", twoTurnHistory()))
	assert.False(t, isFollowUp("tell me about safety reporting features please", twoTurnHistory()))
}
