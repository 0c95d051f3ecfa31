package tutor

import (
	"fmt"
	"strings"

	"github.com/mindsync-ai/mindsync/internal/api"
)

const analysisSystemPrompt = `You are a reading coach. You find the words in a document that a reader at a given vocabulary level would probably not know, and explain them simply.`

const quizSystemPrompt = `You are a reading coach writing a short multiple-choice quiz that checks whether the reader understood a document and its harder vocabulary.`

const chatSystemPrompt = `You are a friendly reading companion. Answer the reader's questions about the document they are reading. Base your answers on the document; when it does not contain the answer, say so briefly and then help with what you know. Keep answers short and conversational.`

func levelGuidance(level api.Level) string {
	switch level {
	case api.LevelEasy:
		return "The reader is a beginner. Include any word beyond everyday conversational vocabulary."
	case api.LevelHard:
		return "The reader is advanced. Only include rare, technical or literary words."
	default:
		return "The reader reads regularly. Include words an average adult reader might need to look up."
	}
}

func buildAnalysisUserMessage(text string, level api.Level, known []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Vocabulary level: %s\n", level))
	b.WriteString(levelGuidance(level))
	b.WriteString("\n")

	if len(known) > 0 {
		b.WriteString("\nThe reader already knows these words; never include them:\n")
		b.WriteString(strings.Join(known, ", "))
		b.WriteString("\n")
	}

	b.WriteString(`
Instructions:
1. List each unfamiliar word once, spelled exactly as in the document.
2. Give a one-sentence definition that fits how the word is used in the document.
3. Give a short example sentence of your own.
4. Return at most 30 words. Return an empty list when nothing qualifies.

Document:
`)
	b.WriteString(text)
	return b.String()
}

func buildQuizUserMessage(text string, size int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`Write %d questions about the document below.

Instructions:
1. Mix comprehension questions with questions about the meaning of harder words.
2. Every question has exactly 4 options and one correct answer.
3. correctAnswer must be copied exactly from options.
4. Explain the answer in one or two sentences.

Document:
`, size))
	b.WriteString(text)
	return b.String()
}

func buildChatUserMessage(message, documentText string) string {
	var b strings.Builder
	b.WriteString("Document:\n")
	b.WriteString(documentText)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(message)
	return b.String()
}
