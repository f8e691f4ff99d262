package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/ai"
	"github.com/prepforge/interview-platform/internal/email"
	"github.com/prepforge/interview-platform/internal/models"
	"github.com/prepforge/interview-platform/internal/stats"
)

type fakeProvider struct {
	opening     string
	openingErr  error
	analysis    *ai.Analysis
	analysisErr error
	summary     *ai.SummaryData

	lastSystemPrompt string
	summaryCalls     int
}

func (p *fakeProvider) GenerateOpeningQuestion(ctx context.Context, systemPrompt string) (string, error) {
	p.lastSystemPrompt = systemPrompt
	if p.openingErr != nil {
		return "", p.openingErr
	}
	if p.opening == "" {
		return "What does your project do?", nil
	}
	return p.opening, nil
}

func (p *fakeProvider) AnalyzeAnswer(ctx context.Context, history []ai.Message, answer, projectContext string) (*ai.Analysis, error) {
	if p.analysisErr != nil {
		return nil, p.analysisErr
	}
	if p.analysis != nil {
		return p.analysis, nil
	}
	return &ai.Analysis{
		Feedback:     ai.FeedbackData{Rating: 7, Explanation: "decent", SampleAnswer: "s", CommonMistakes: "c"},
		NextQuestion: "How do you test it?",
	}, nil
}

func (p *fakeProvider) GenerateSummary(ctx context.Context, history []ai.Message) (*ai.SummaryData, error) {
	p.summaryCalls++
	if p.summary != nil {
		return p.summary, nil
	}
	return &ai.SummaryData{
		OverallScore:        85,
		Strengths:           []string{"clarity"},
		Weaknesses:          []string{"depth"},
		RevisionTopics:      []string{"indexes"},
		ProjectImprovements: []string{"add CI"},
		ResponseCount:       999, // must be overridden locally
	}, nil
}

type capturedRow struct {
	row stats.Row
}

type fakeRecorder struct {
	rows chan capturedRow
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{rows: make(chan capturedRow, 4)}
}

func (r *fakeRecorder) Record(ctx context.Context, row stats.Row) error {
	r.rows <- capturedRow{row: row}
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Subject{}, &models.StudyMaterial{},
		&Interview{}, &Message{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, prov ai.Provider, rec stats.Recorder) *Service {
	t.Helper()
	reg := ai.NewRegistry()
	reg.Register("fake", func(apiKey string) (ai.Provider, error) {
		return prov, nil
	})
	return NewService(NewRepo(db), reg, rec, email.SMTPConfig{})
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Email: "dana@example.com", PasswordHash: "x", FullName: "Dana Doe"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func startFake(t *testing.T, svc *Service, userID uint64) *Interview {
	t.Helper()
	iv, err := svc.Start(context.Background(), userID, StartInput{
		Title:       "Shop API",
		Description: "An e-commerce backend",
		Provider:    "fake",
	})
	if err != nil {
		t.Fatalf("start interview: %v", err)
	}
	return iv
}

func TestStart_FirstMessageIsInterviewer(t *testing.T) {
	db := openTestDB(t)
	prov := &fakeProvider{opening: "Walk me through the architecture."}
	svc := newTestService(t, db, prov, nil)
	u := seedUser(t, db)

	iv := startFake(t, svc, u.ID)
	if iv.Status != StatusInProgress {
		t.Fatalf("status = %q, want in_progress", iv.Status)
	}

	var msgs []Message
	if err := db.Where("interview_id = ?", iv.ID).Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("query messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != RoleInterviewer || msgs[0].Content != "Walk me through the architecture." {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
}

func TestStart_ProviderFailureLeavesNoInterview(t *testing.T) {
	db := openTestDB(t)
	prov := &fakeProvider{openingErr: &ai.ProviderError{
		Provider: "ollama", Code: ai.ErrCodeUnreachable, Message: "Ollama is not running",
	}}
	svc := newTestService(t, db, prov, nil)
	u := seedUser(t, db)

	_, err := svc.Start(context.Background(), u.ID, StartInput{
		Title:       "Shop API",
		Description: "Subject: Algorithms",
		Provider:    "fake",
	})
	var pe *ai.ProviderError
	if !errors.As(err, &pe) || pe.Code != ai.ErrCodeUnreachable {
		t.Fatalf("expected unreachable provider error, got %v", err)
	}

	var cnt int64
	if err := db.Model(&Interview{}).Count(&cnt).Error; err != nil {
		t.Fatalf("count interviews: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected no interview rows after provider failure, got %d", cnt)
	}
}

func TestStart_ValidatesInput(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProvider{}, nil)
	u := seedUser(t, db)

	_, err := svc.Start(context.Background(), u.ID, StartInput{Description: "d", Provider: "fake"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}

	_, err = svc.Start(context.Background(), u.ID, StartInput{Title: "t", Description: "d", Provider: "martian"})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for unknown provider, got %v", err)
	}
}

func TestStart_SubjectPracticeFoldsMaterials(t *testing.T) {
	db := openTestDB(t)
	prov := &fakeProvider{}
	svc := newTestService(t, db, prov, nil)
	u := seedUser(t, db)

	sub := &models.Subject{Name: "Database Systems", Icon: "Database", IsPreset: true}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	mat := &models.StudyMaterial{
		UserID: u.ID, SubjectID: sub.ID,
		FileName: "notes.md", FileType: "text/markdown",
		Content: "B-trees keep pages balanced.",
	}
	if err := db.Create(mat).Error; err != nil {
		t.Fatalf("seed material: %v", err)
	}

	_, err := svc.Start(context.Background(), u.ID, StartInput{
		Title:       "DB practice",
		Description: "Indexing and transactions",
		SubjectID:   &sub.ID,
		Provider:    "fake",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	sp := prov.lastSystemPrompt
	if !strings.Contains(sp, "Database Systems") {
		t.Fatalf("subject name missing from system prompt:\n%s", sp)
	}
	if !strings.Contains(sp, "B-trees keep pages balanced.") {
		t.Fatalf("study material missing from system prompt:\n%s", sp)
	}
	if !strings.Contains(sp, "subject practice session") {
		t.Fatalf("expected the subject-practice template:\n%s", sp)
	}
}

func TestSubmitAnswer_AttachesFeedbackAndNextQuestion(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProvider{}, nil)
	u := seedUser(t, db)
	iv := startFake(t, svc, u.ID)

	candidate, next, err := svc.SubmitAnswer(context.Background(), u.ID, iv.ID, "We shard by user id", "")
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if candidate.Feedback == nil || candidate.Feedback.Rating != 7 {
		t.Fatalf("expected feedback on candidate message, got %+v", candidate.Feedback)
	}
	if next.Role != RoleInterviewer || next.Content != "How do you test it?" {
		t.Fatalf("unexpected next question: %+v", next)
	}

	// feedback must be durable, not just merged into the response
	var stored Message
	if err := db.First(&stored, candidate.ID).Error; err != nil {
		t.Fatalf("load candidate message: %v", err)
	}
	if stored.Feedback == nil || stored.Feedback.Rating != 7 {
		t.Fatalf("feedback not persisted: %+v", stored.Feedback)
	}

	var msgs []Message
	if err := db.Where("interview_id = ?", iv.ID).Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("query messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected question+answer+question, got %d messages", len(msgs))
	}
	if msgs[0].Role != RoleInterviewer || msgs[1].Role != RoleCandidate || msgs[2].Role != RoleInterviewer {
		t.Fatalf("unexpected role sequence: %s %s %s", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
}

func TestSubmitAnswer_CompletedInterviewRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProvider{}, nil)
	u := seedUser(t, db)
	iv := startFake(t, svc, u.ID)

	if _, err := svc.Complete(context.Background(), u.ID, iv.ID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var before int64
	_ = db.Model(&Message{}).Where("interview_id = ?", iv.ID).Count(&before)

	_, _, err := svc.SubmitAnswer(context.Background(), u.ID, iv.ID, "late answer", "")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found on completed interview, got %v", err)
	}

	var after int64
	_ = db.Model(&Message{}).Where("interview_id = ?", iv.ID).Count(&after)
	if before != after {
		t.Fatalf("message rows changed: %d -> %d", before, after)
	}
}

func TestSubmitAnswer_ForeignInterviewHidden(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProvider{}, nil)
	owner := seedUser(t, db)
	iv := startFake(t, svc, owner.ID)

	other := &models.User{Email: "mallory@example.com", PasswordHash: "x", FullName: "Mallory"}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, _, err := svc.SubmitAnswer(context.Background(), other.ID, iv.ID, "hi", "")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for foreign interview, got %v", err)
	}
}

func TestComplete_SetsSummaryAndOverridesResponseCount(t *testing.T) {
	db := openTestDB(t)
	prov := &fakeProvider{}
	rec := newFakeRecorder()
	svc := newTestService(t, db, prov, rec)
	u := seedUser(t, db)
	iv := startFake(t, svc, u.ID)

	for i := 0; i < 2; i++ {
		if _, _, err := svc.SubmitAnswer(context.Background(), u.ID, iv.ID, fmt.Sprintf("answer %d", i), ""); err != nil {
			t.Fatalf("submit answer %d: %v", i, err)
		}
	}

	done, err := svc.Complete(context.Background(), u.ID, iv.ID, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}
	if done.Summary == nil {
		t.Fatalf("summary not set")
	}
	if done.OverallScore == nil || *done.OverallScore != done.Summary.OverallScore {
		t.Fatalf("overall score %v does not mirror summary score %d", done.OverallScore, done.Summary.OverallScore)
	}
	// the fake reported 999; the service counts candidate rows itself
	if done.Summary.ResponseCount != 2 {
		t.Fatalf("response_count = %d, want 2", done.Summary.ResponseCount)
	}

	select {
	case got := <-rec.rows:
		if got.row.InterviewID != iv.ID || got.row.ResponseCount != 2 {
			t.Fatalf("unexpected stats row: %+v", got.row)
		}
		if got.row.StudentEmail != u.Email {
			t.Fatalf("stats row email = %q, want %q", got.row.StudentEmail, u.Email)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stats row was never recorded")
	}

	// persisted copy matches what was returned
	var stored Interview
	if err := db.First(&stored, iv.ID).Error; err != nil {
		t.Fatalf("load interview: %v", err)
	}
	if stored.Status != StatusCompleted || stored.Summary == nil || stored.Summary.ResponseCount != 2 {
		t.Fatalf("stored interview not completed properly: %+v", stored)
	}
}

func TestComplete_SecondCallIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	prov := &fakeProvider{}
	svc := newTestService(t, db, prov, nil)
	u := seedUser(t, db)
	iv := startFake(t, svc, u.ID)

	first, err := svc.Complete(context.Background(), u.ID, iv.ID, "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	second, err := svc.Complete(context.Background(), u.ID, iv.ID, "")
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if prov.summaryCalls != 1 {
		t.Fatalf("summary generated %d times, want 1", prov.summaryCalls)
	}
	if second.Status != StatusCompleted || second.Summary == nil {
		t.Fatalf("second complete returned incomplete record: %+v", second)
	}
	if first.Summary.OverallScore != second.Summary.OverallScore {
		t.Fatalf("scores diverged between calls: %d vs %d", first.Summary.OverallScore, second.Summary.OverallScore)
	}
}

func TestMessages_OrderedAndOwned(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProvider{}, nil)
	u := seedUser(t, db)
	iv := startFake(t, svc, u.ID)

	if _, _, err := svc.SubmitAnswer(context.Background(), u.ID, iv.ID, "first answer", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	msgs, err := svc.Messages(context.Background(), u.ID, iv.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) == 0 || msgs[0].Role != RoleInterviewer {
		t.Fatalf("transcript must start with an interviewer message, got %+v", msgs)
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Fatalf("messages out of order at %d", i)
		}
	}

	if _, err := svc.Messages(context.Background(), u.ID+100, iv.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for foreign transcript, got %v", err)
	}
}
