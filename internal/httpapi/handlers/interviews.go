package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/ai"
	"github.com/prepforge/interview-platform/internal/common"
	"github.com/prepforge/interview-platform/internal/httpapi/middleware"
	"github.com/prepforge/interview-platform/internal/interview"
)

func failInterviewErr(c *gin.Context, err error) {
	var ve *interview.ValidationError
	if errors.As(err, &ve) {
		common.Fail(c, http.StatusBadRequest, 10002, ve.Msg)
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.Fail(c, http.StatusNotFound, 40400, "interview not found")
		return
	}

	var pe *ai.ProviderError
	if errors.As(err, &pe) {
		switch pe.Code {
		case ai.ErrCodeAPIKey:
			common.Fail(c, http.StatusInternalServerError, 50010, pe.Message+" (check or re-enter your API key)")
		case ai.ErrCodeTimeout, ai.ErrCodeUnreachable, ai.ErrCodeModelMissing:
			common.Fail(c, http.StatusBadGateway, 50011, pe.Message)
		default:
			common.Fail(c, http.StatusInternalServerError, 50012, "AI provider error")
		}
		return
	}

	common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
}

func interviewID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid interview id")
		return 0, false
	}
	return id, true
}

type createInterviewReq struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Link        string  `json:"link"`
	SubjectID   *uint64 `json:"subject_id"`
	Provider    string  `json:"provider"`
	APIKey      string  `json:"api_key"`
}

func (h *Handler) CreateInterview(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	iv, err := h.Svc.Start(c.Request.Context(), uid, interview.StartInput{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		SubjectID:   req.SubjectID,
		Provider:    req.Provider,
		APIKey:      req.APIKey,
	})
	if err != nil {
		failInterviewErr(c, err)
		return
	}

	common.Created(c, iv)
}

func (h *Handler) GetInterview(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, ok := interviewID(c)
	if !ok {
		return
	}

	iv, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	common.OK(c, iv)
}

func (h *Handler) ListInterviews(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	ivs, err := h.Svc.List(c.Request.Context(), uid)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	common.OK(c, gin.H{"interviews": ivs})
}

func (h *Handler) ListInterviewMessages(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, ok := interviewID(c)
	if !ok {
		return
	}

	msgs, err := h.Svc.Messages(c.Request.Context(), uid, id)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs})
}

type submitAnswerReq struct {
	Content string `json:"content" binding:"required"`
	APIKey  string `json:"api_key"`
}

func (h *Handler) SubmitAnswer(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, ok := interviewID(c)
	if !ok {
		return
	}

	var req submitAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	candidate, next, err := h.Svc.SubmitAnswer(c.Request.Context(), uid, id, req.Content, req.APIKey)
	if err != nil {
		failInterviewErr(c, err)
		return
	}

	common.OK(c, gin.H{
		"message":  candidate,
		"response": next,
		"feedback": candidate.Feedback,
	})
}

type completeReq struct {
	APIKey string `json:"api_key"`
}

func (h *Handler) CompleteInterview(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	id, ok := interviewID(c)
	if !ok {
		return
	}

	var req completeReq
	_ = c.ShouldBindJSON(&req) // body may be empty

	iv, err := h.Svc.Complete(c.Request.Context(), uid, id, req.APIKey)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	common.OK(c, iv)
}

func (h *Handler) AdminListInterviews(c *gin.Context) {
	var ivs []interview.Interview
	if err := h.DB.Order("id DESC").Find(&ivs).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"interviews": ivs})
}
