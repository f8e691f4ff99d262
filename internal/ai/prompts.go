package ai

import (
	"fmt"
	"strings"
)

const openingInstruction = "Start the interview by asking the first question."

func OpeningPrompt(systemPrompt string) string {
	return systemPrompt + "\n\n" + openingInstruction
}

func analysisPrompt(history []Message, answer, projectContext string) string {
	return fmt.Sprintf(`You are an expert technical interviewer.
%s

History of the interview so far:
%s

Candidate's most recent answer: %s

TASK:
1. Analyze the candidate's answer.
2. Generate the NEXT question.

CRITICAL INSTRUCTION - NO DUPLICATES:
Review the "History" above. You MUST NOT ask any question that is similar or identical to questions already asked by the interviewer.
If you are about to ask a question that is already in the history, choose a DIFFERENT topic or a follow-up question instead.

Output in JSON format ONLY:
{
  "feedback": {
    "rating": number (0-10),
    "explanation": "constructive feedback",
    "sample_answer": "better way to answer",
    "common_mistakes": "what to avoid"
  },
  "next_question": "the next question to ask"
}

Other Instructions:
1. Adapt difficulty based on the answer quality.
2. If the answer is weak, ask probing questions.
3. If strong, ask about trade-offs, scalability, or edge cases.
4. Cover topics: Architecture, Database, Security, Testing, Performance.`,
		projectContext, renderHistory(history, false), answer)
}

func summaryPrompt(history []Message) string {
	return fmt.Sprintf(`Generate a final interview summary in JSON format ONLY based on this history.
The history includes the candidate's answers and the evaluator's immediate feedback/rating for each answer.
Use the ratings to calculate a precise Overall Score.

History:
%s

JSON Structure:
{
  "overall_score": number (0-100),
  "strengths": ["list of strong points"],
  "weaknesses": ["list of weak points"],
  "revision_topics": ["list of topics to study"],
  "project_improvements": ["list of actionable improvements"]
}`, renderHistory(history, true))
}

func renderHistory(history []Message, withFeedback bool) string {
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			if withFeedback {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		if withFeedback && m.Feedback != nil {
			fmt.Fprintf(&b, "\n[Evaluator Feedback: Rating %d/10. %s]", m.Feedback.Rating, m.Feedback.Explanation)
		}
	}
	return b.String()
}
