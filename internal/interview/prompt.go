package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/prepforge/interview-platform/internal/models"
)

const projectPromptTmpl = `You are an expert technical interviewer conducting a project-based interview.
Project Title: %s
Description: %s

Your goal is to assess the candidate's technical depth, problem-solving skills, and communication.
Start by asking a high-level question about the project overview or motivation.
Keep the question concise and professional.`

const subjectPromptTmpl = `You are an expert technical interviewer conducting a subject practice session.
Subject: %s
Focus: %s

Your goal is to assess the candidate's understanding of the subject, from fundamentals to advanced topics.
Ask one question at a time and keep each question concise and professional.`

// buildSystemPrompt picks the subject-practice template when the interview is
// tied to a subject (or the description says so) and folds in the
// candidate's uploaded study materials for that subject, bounded in size.
func (s *Service) buildSystemPrompt(ctx context.Context, userID uint64, in StartInput) (string, error) {
	var prompt string
	switch {
	case in.SubjectID != nil:
		sub, err := s.repo.GetSubject(ctx, *in.SubjectID)
		if err != nil {
			return "", &ValidationError{Msg: "unknown subject"}
		}
		prompt = fmt.Sprintf(subjectPromptTmpl, sub.Name, in.Description)

		materials, err := s.repo.ListMaterials(ctx, userID, *in.SubjectID)
		if err != nil {
			return "", err
		}
		if extra := renderMaterials(materials); extra != "" {
			prompt += "\n\nUse the candidate's uploaded study materials as additional context:\n" + extra
		}

	case isSubjectPractice(in.Description):
		prompt = fmt.Sprintf(subjectPromptTmpl, in.Title, in.Description)

	default:
		prompt = fmt.Sprintf(projectPromptTmpl, in.Title, in.Description)
	}
	return prompt, nil
}

func isSubjectPractice(description string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(description)), "subject")
}

// interviewContext is the short context line repeated on every analysis call.
func interviewContext(iv *Interview) string {
	if iv.SubjectID != nil || isSubjectPractice(iv.Description) {
		return fmt.Sprintf("Subject practice: %s - %s", iv.Title, iv.Description)
	}
	return fmt.Sprintf("Project: %s - %s", iv.Title, iv.Description)
}

// renderMaterials concatenates uploaded files, each capped at maxMaterialLen
// and the whole block at maxContextLen.
func renderMaterials(materials []models.StudyMaterial) string {
	var b strings.Builder
	for _, m := range materials {
		if m.Content == "" {
			continue
		}
		chunk := fmt.Sprintf("--- %s ---\n%s\n", m.FileName, truncate(m.Content, maxMaterialLen))
		if b.Len()+len(chunk) > maxContextLen {
			break
		}
		b.WriteString(chunk)
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
