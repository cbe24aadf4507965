package openai

import "fmt"

func buildAnswerPrompt(question, contextText string) string {
	return fmt.Sprintf(`Based on the following documentation context, please answer the user's question clearly and accurately.

Documentation Context:
%s

User Question: %s

Answer:`, contextText, question)
}
