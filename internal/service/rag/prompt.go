package rag

import (
	"strings"

	"github.com/Domenick1991/ragbooking/internal/domain"
)

const systemInstruction = "You are a helpful assistant that answers ONLY using the provided context. " +
	"Use chat history only for conversational continuity, not as a factual source. " +
	"If the context does not contain the answer, reply: 'I don't have information about that.'"

const contextSeparator = "\n\n---\n\n"

// BuildPrompt assembles the message list sent to the model: the instruction,
// the retrieved context, the last historyTurns history messages and the question.
func BuildPrompt(history []domain.ChatMessage, chunks []domain.RetrievedChunk, question string, historyTurns int) []domain.ChatMessage {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	if historyTurns >= 0 && len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}

	messages := make([]domain.ChatMessage, 0, len(history)+3)
	messages = append(messages,
		domain.ChatMessage{Role: domain.RoleSystem, Content: systemInstruction},
		domain.ChatMessage{Role: domain.RoleSystem, Content: "Context:\n\n" + strings.Join(texts, contextSeparator)},
	)
	for _, m := range history {
		messages = append(messages, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})
}
