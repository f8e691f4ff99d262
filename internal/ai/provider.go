package ai

import "context"

const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
)

// Message is one transcript turn as seen by a provider.
type Message struct {
	Role     string
	Content  string
	Feedback *FeedbackData
}

// FeedbackData is the per-answer critique produced by AnalyzeAnswer.
type FeedbackData struct {
	Rating         int    `json:"rating"`
	Explanation    string `json:"explanation"`
	SampleAnswer   string `json:"sample_answer"`
	CommonMistakes string `json:"common_mistakes"`
}

// SummaryData is the end-of-interview aggregate report.
type SummaryData struct {
	OverallScore        int      `json:"overall_score"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	RevisionTopics      []string `json:"revision_topics"`
	ProjectImprovements []string `json:"project_improvements"`
	ResponseCount       int      `json:"response_count,omitempty"`
}

// Analysis bundles the critique of the latest answer with the next question.
type Analysis struct {
	Feedback     FeedbackData `json:"feedback"`
	NextQuestion string       `json:"next_question"`
}

// Provider is the uniform surface over the chat-completion backends.
// AnalyzeAnswer and GenerateSummary never fail on malformed model output;
// unparseable responses degrade to fixed fallback payloads.
type Provider interface {
	GenerateOpeningQuestion(ctx context.Context, systemPrompt string) (string, error)
	AnalyzeAnswer(ctx context.Context, history []Message, answer, projectContext string) (*Analysis, error)
	GenerateSummary(ctx context.Context, history []Message) (*SummaryData, error)
}
