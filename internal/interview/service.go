package interview

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/ai"
	"github.com/prepforge/interview-platform/internal/email"
	"github.com/prepforge/interview-platform/internal/models"
	"github.com/prepforge/interview-platform/internal/stats"
)

const (
	defaultProvider = "gemini"

	// study material bounds when folded into the system prompt
	maxMaterialLen = 8 * 1024
	maxContextLen  = 24 * 1024
)

// ValidationError carries a message safe to surface verbatim in a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type Service struct {
	repo     *Repo
	registry *ai.Registry
	recorder stats.Recorder
	smtp     email.SMTPConfig
	locks    *keyedMutex
}

func NewService(repo *Repo, registry *ai.Registry, recorder stats.Recorder, smtp email.SMTPConfig) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		recorder: recorder,
		smtp:     smtp,
		locks:    newKeyedMutex(),
	}
}

type StartInput struct {
	Title       string
	Description string
	Link        string
	SubjectID   *uint64
	Provider    string
	APIKey      string
}

// Start validates the input, resolves the provider, generates the opening
// question and only then persists the interview with its first message.
// A provider failure leaves no interview row behind.
func (s *Service) Start(ctx context.Context, userID uint64, in StartInput) (*Interview, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Msg: "title is required"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, &ValidationError{Msg: "description is required"}
	}
	if in.Provider == "" {
		in.Provider = defaultProvider
	}
	if !s.registry.Known(in.Provider) {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown provider %q", in.Provider)}
	}

	provider, err := s.registry.Get(in.Provider, in.APIKey)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := s.buildSystemPrompt(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	firstQuestion, err := provider.GenerateOpeningQuestion(ctx, systemPrompt)
	if err != nil {
		return nil, err
	}

	iv := &Interview{
		UserID:      userID,
		SubjectID:   in.SubjectID,
		Title:       in.Title,
		Description: in.Description,
		Link:        in.Link,
		Provider:    strings.ToLower(in.Provider),
		Status:      StatusInProgress,
	}
	if _, err := s.repo.CreateWithFirstQuestion(ctx, iv, firstQuestion); err != nil {
		return nil, err
	}
	return iv, nil
}

// SubmitAnswer persists the candidate's answer, analyzes it, attaches the
// feedback to the stored answer and appends the next interviewer question.
// Mutation is serialized per interview.
func (s *Service) SubmitAnswer(ctx context.Context, userID, interviewID uint64, content, apiKey string) (*Message, *Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, &ValidationError{Msg: "content is required"}
	}

	unlock := s.locks.lock(interviewID)
	defer unlock()

	iv, err := s.ownedInProgress(ctx, userID, interviewID)
	if err != nil {
		return nil, nil, err
	}

	provider, err := s.registry.Get(iv.Provider, apiKey)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.repo.ListMessagesAsc(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}

	candidate := &Message{
		InterviewID: interviewID,
		Role:        RoleCandidate,
		Content:     content,
	}
	if err := s.repo.InsertMessage(ctx, candidate); err != nil {
		return nil, nil, err
	}

	analysis, err := provider.AnalyzeAnswer(ctx, toAIMessages(history), content, interviewContext(iv))
	if err != nil {
		return nil, nil, err
	}

	fb := FeedbackJSON(analysis.Feedback)
	next := &Message{
		InterviewID: interviewID,
		Role:        RoleInterviewer,
		Content:     analysis.NextQuestion,
	}
	if err := s.repo.FinishExchange(ctx, candidate.ID, &fb, next); err != nil {
		return nil, nil, err
	}

	candidate.Feedback = &fb
	return candidate, next, nil
}

// Complete transitions the interview to its terminal state. A second call on
// a completed interview returns the stored record without another LLM call.
func (s *Service) Complete(ctx context.Context, userID, interviewID uint64, apiKey string) (*Interview, error) {
	unlock := s.locks.lock(interviewID)
	defer unlock()

	iv, err := s.owned(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == StatusCompleted {
		return iv, nil
	}

	provider, err := s.registry.Get(iv.Provider, apiKey)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListMessagesAsc(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	summary, err := provider.GenerateSummary(ctx, toAIMessages(history))
	if err != nil {
		return nil, err
	}

	// response_count is computed here, never trusted from the model
	responses := 0
	for _, m := range history {
		if m.Role == RoleCandidate {
			responses++
		}
	}
	summary.ResponseCount = responses

	completedAt := time.Now()
	sj := SummaryJSON(*summary)
	if err := s.repo.MarkCompleted(ctx, interviewID, &sj, summary.OverallScore, completedAt); err != nil {
		return nil, err
	}

	iv.Status = StatusCompleted
	iv.Summary = &sj
	score := summary.OverallScore
	iv.OverallScore = &score
	iv.CompletedAt = &completedAt

	s.finishAsync(iv, summary)

	return iv, nil
}

// finishAsync emits the stats row and the summary mail. Both are
// fire-and-forget: failures are logged, the completion response is never
// blocked or altered.
func (s *Service) finishAsync(iv *Interview, summary *ai.SummaryData) {
	ivCopy := *iv
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.repo.GetUser(ctx, ivCopy.UserID)
		if err != nil {
			log.Printf("[stats] load user %d failed: %v", ivCopy.UserID, err)
			return
		}

		if s.recorder != nil {
			row := buildStatsRow(&ivCopy, user, summary)
			if err := s.recorder.Record(ctx, row); err != nil {
				log.Printf("[stats] record interview %d failed: %v", ivCopy.ID, err)
			}
		}

		if s.smtp.Enabled() {
			subject := fmt.Sprintf("Your interview report: %s", ivCopy.Title)
			body := summaryMailBody(user.FullName, &ivCopy, summary)
			if err := email.SendText(s.smtp, user.Email, subject, body); err != nil {
				log.Printf("[email] summary mail for interview %d failed: %v", ivCopy.ID, err)
			}
		}
	}()
}

func buildStatsRow(iv *Interview, user *models.User, summary *ai.SummaryData) stats.Row {
	duration := 0
	if iv.CompletedAt != nil {
		duration = int(math.Round(iv.CompletedAt.Sub(iv.CreatedAt).Minutes()))
	}
	end := ""
	if iv.CompletedAt != nil {
		end = iv.CompletedAt.Format(time.RFC3339)
	}
	return stats.Row{
		InterviewID:     iv.ID,
		StudentName:     user.FullName,
		StudentEmail:    user.Email,
		ProjectTitle:    iv.Title,
		StartTime:       iv.CreatedAt.Format(time.RFC3339),
		EndTime:         end,
		DurationMinutes: duration,
		OverallScore:    summary.OverallScore,
		ResponseCount:   summary.ResponseCount,
		Strengths:       strings.Join(summary.Strengths, "; "),
		Weaknesses:      strings.Join(summary.Weaknesses, "; "),
		RevisionTopics:  strings.Join(summary.RevisionTopics, "; "),
	}
}

func summaryMailBody(fullName string, iv *Interview, summary *ai.SummaryData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", fullName)
	fmt.Fprintf(&b, "Your interview %q is complete. Overall score: %d/100.\n\n", iv.Title, summary.OverallScore)
	if len(summary.Strengths) > 0 {
		fmt.Fprintf(&b, "Strengths:\n- %s\n\n", strings.Join(summary.Strengths, "\n- "))
	}
	if len(summary.Weaknesses) > 0 {
		fmt.Fprintf(&b, "Areas to improve:\n- %s\n\n", strings.Join(summary.Weaknesses, "\n- "))
	}
	if len(summary.RevisionTopics) > 0 {
		fmt.Fprintf(&b, "Suggested revision topics:\n- %s\n\n", strings.Join(summary.RevisionTopics, "\n- "))
	}
	b.WriteString("Keep practicing!\n")
	return b.String()
}

func (s *Service) Get(ctx context.Context, userID, interviewID uint64) (*Interview, error) {
	return s.owned(ctx, userID, interviewID)
}

func (s *Service) List(ctx context.Context, userID uint64) ([]Interview, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListBySubject(ctx context.Context, userID, subjectID uint64) ([]Interview, error) {
	return s.repo.ListByUserAndSubject(ctx, userID, subjectID)
}

func (s *Service) Messages(ctx context.Context, userID, interviewID uint64) ([]Message, error) {
	if _, err := s.owned(ctx, userID, interviewID); err != nil {
		return nil, err
	}
	return s.repo.ListMessagesAsc(ctx, interviewID)
}

// owned hides foreign interviews behind not-found.
func (s *Service) owned(ctx context.Context, userID, interviewID uint64) (*Interview, error) {
	iv, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return iv, nil
}

func (s *Service) ownedInProgress(ctx context.Context, userID, interviewID uint64) (*Interview, error) {
	iv, err := s.owned(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status != StatusInProgress {
		return nil, gorm.ErrRecordNotFound
	}
	return iv, nil
}

func toAIMessages(msgs []Message) []ai.Message {
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		am := ai.Message{Role: m.Role, Content: m.Content}
		if m.Feedback != nil {
			fb := ai.FeedbackData(*m.Feedback)
			am.Feedback = &fb
		}
		out = append(out, am)
	}
	return out
}
