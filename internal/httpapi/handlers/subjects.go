package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/common"
	"github.com/prepforge/interview-platform/internal/httpapi/middleware"
	"github.com/prepforge/interview-platform/internal/models"
)

func subjectID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, 10005, "invalid subject id")
		return 0, false
	}
	return id, true
}

func (h *Handler) ListSubjects(c *gin.Context) {
	var subjects []models.Subject
	if err := h.DB.Order("is_preset DESC, name ASC").Find(&subjects).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"subjects": subjects})
}

type createSubjectReq struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var req createSubjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	sub := models.Subject{Name: req.Name, Icon: req.Icon, IsPreset: false}
	if err := h.DB.Create(&sub).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "failed to create subject (maybe name already exists)")
		return
	}
	common.Created(c, sub)
}

func (h *Handler) EnrollSubject(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	sid, ok := subjectID(c)
	if !ok {
		return
	}

	var sub models.Subject
	if err := h.DB.First(&sub, sid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "subject not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	us := models.UserSubject{UserID: uid, SubjectID: sid}
	if err := h.DB.Create(&us).Error; err != nil {
		// unique index: already enrolled is fine
		common.OK(c, gin.H{"subject_id": sid})
		return
	}
	common.Created(c, us)
}

func (h *Handler) UnenrollSubject(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	sid, ok := subjectID(c)
	if !ok {
		return
	}

	if err := h.DB.Where("user_id = ? AND subject_id = ?", uid, sid).
		Delete(&models.UserSubject{}).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"subject_id": sid})
}

// SubjectInterviews is the per-subject analytics feed.
func (h *Handler) SubjectInterviews(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	sid, ok := subjectID(c)
	if !ok {
		return
	}

	ivs, err := h.Svc.ListBySubject(c.Request.Context(), uid, sid)
	if err != nil {
		failInterviewErr(c, err)
		return
	}
	common.OK(c, gin.H{"interviews": ivs})
}
