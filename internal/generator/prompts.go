package generator

import "fmt"

const (
	quizTemplate = "Based on the following content:\n%s\n and the query\n%s\n, create a quiz. " +
		"Only use your own information to refine the quiz. Do not use it to introduce new topics. " +
		"Limit the quiz to 3 questions. Also give the answers at the end."

	explainTemplate = "Based on the following content:\n%s\n and the query\n%s\n" +
		"Explain it in simple terms. If necessary, use your own information related to the query. " +
		"Also mention what information is derived from the content given and what is derived from your own knowledge."
)

// QuizPrompt renders the quiz instruction for the retrieved context and the user query.
func QuizPrompt(retrieved, query string) string {
	return fmt.Sprintf(quizTemplate, retrieved, query)
}

// ExplainPrompt renders the explanation instruction for the retrieved context and the user query.
func ExplainPrompt(retrieved, query string) string {
	return fmt.Sprintf(explainTemplate, retrieved, query)
}
