package help

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

func TestHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   session.Params
		contains string
	}{
		{"no query offers topics", nil, TopicPrompt},
		{"hours", session.Params{"query": "When do you OPEN on Sunday?"}, "Monday to Thursday"},
		{"borrowing", session.Params{"question": "how long is a loan"}, "21 days"},
		{"contact", session.Params{"query": "what's your phone number"}, "(555) 123-4567"},
		{"unmatched", session.Params{"query": "can I bring my dog"}, "library staff"},
	}

	h := NewHandler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := h.Help(context.Background(), &bot.Request{Params: tt.params})
			assert.Contains(t, res.Message, tt.contains)
			assert.NotEmpty(t, res.Suggestions)
			assert.Nil(t, res.Rich)
		})
	}
}

func TestHelp_UnmatchedOffersMoreInformation(t *testing.T) {
	t.Parallel()
	res := NewHandler(nil).Help(context.Background(), &bot.Request{Params: session.Params{"query": "parking"}})
	assert.Contains(t, res.Suggestions, "More information")
}

func TestDefault(t *testing.T) {
	t.Parallel()
	res := NewHandler(nil).Default(context.Background(), &bot.Request{})
	assert.Equal(t, bot.DefaultMessage, res.Message)
	assert.Contains(t, res.Suggestions, "Search books")
	assert.Empty(t, res.Updates)
}
