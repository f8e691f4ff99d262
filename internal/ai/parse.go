package ai

import (
	"encoding/json"
	"log"
	"math"
	"regexp"
	"strings"
)

const fallbackQuestion = "Could you elaborate on that?"

var codeFence = regexp.MustCompile("```json\n?|\n?```")

func cleanJSON(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

func fallbackAnalysis() *Analysis {
	return &Analysis{
		Feedback: FeedbackData{
			Rating:         5,
			Explanation:    "Could not parse AI feedback.",
			SampleAnswer:   "N/A",
			CommonMistakes: "N/A",
		},
		NextQuestion: fallbackQuestion,
	}
}

func fallbackSummary() *SummaryData {
	return &SummaryData{
		OverallScore:        70,
		Strengths:           []string{"Participation"},
		Weaknesses:          []string{"Technical depth"},
		RevisionTopics:      []string{"Core concepts"},
		ProjectImprovements: []string{"Review basics"},
	}
}

// Models occasionally emit fractional ratings even when asked for numbers,
// so scores are decoded as floats and rounded.
type rawAnalysis struct {
	Feedback struct {
		Rating         float64 `json:"rating"`
		Explanation    string  `json:"explanation"`
		SampleAnswer   string  `json:"sample_answer"`
		CommonMistakes string  `json:"common_mistakes"`
	} `json:"feedback"`
	NextQuestion string `json:"next_question"`
}

type rawSummary struct {
	OverallScore        float64  `json:"overall_score"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	RevisionTopics      []string `json:"revision_topics"`
	ProjectImprovements []string `json:"project_improvements"`
}

func parseAnalysis(text string) *Analysis {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		log.Printf("ai: unparseable analysis output: %.200q", text)
		return fallbackAnalysis()
	}
	out := &Analysis{
		Feedback: FeedbackData{
			Rating:         clamp(raw.Feedback.Rating, 0, 10),
			Explanation:    raw.Feedback.Explanation,
			SampleAnswer:   raw.Feedback.SampleAnswer,
			CommonMistakes: raw.Feedback.CommonMistakes,
		},
		NextQuestion: strings.TrimSpace(raw.NextQuestion),
	}
	if out.NextQuestion == "" {
		out.NextQuestion = "Let's move on. Can you explain the architecture?"
	}
	return out
}

func parseSummary(text string) *SummaryData {
	var raw rawSummary
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		log.Printf("ai: unparseable summary output: %.200q", text)
		return fallbackSummary()
	}
	return &SummaryData{
		OverallScore:        clamp(raw.OverallScore, 0, 100),
		Strengths:           raw.Strengths,
		Weaknesses:          raw.Weaknesses,
		RevisionTopics:      raw.RevisionTopics,
		ProjectImprovements: raw.ProjectImprovements,
	}
}

func clamp(v float64, lo, hi int) int {
	n := int(math.Round(v))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
