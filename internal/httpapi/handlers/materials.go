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

// uploaded material content is capped at 8 KiB, what the prompt builder uses
const maxStoredMaterialLen = 8 * 1024

type createMaterialReq struct {
	FileName string `json:"file_name" binding:"required"`
	FileType string `json:"file_type" binding:"required"`
	Content  string `json:"content"`
}

func (h *Handler) CreateStudyMaterial(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	sid, ok := subjectID(c)
	if !ok {
		return
	}

	var req createMaterialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	content := req.Content
	if len(content) > maxStoredMaterialLen {
		content = content[:maxStoredMaterialLen]
	}

	m := models.StudyMaterial{
		UserID:    uid,
		SubjectID: sid,
		FileName:  req.FileName,
		FileType:  req.FileType,
		Content:   content,
	}
	if err := h.DB.Create(&m).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.Created(c, m)
}

func (h *Handler) ListStudyMaterials(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	sid, ok := subjectID(c)
	if !ok {
		return
	}

	var out []models.StudyMaterial
	if err := h.DB.Where("user_id = ? AND subject_id = ?", uid, sid).
		Order("id ASC").Find(&out).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"materials": out})
}

func (h *Handler) DeleteStudyMaterial(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, 10007, "invalid material id")
		return
	}

	var m models.StudyMaterial
	if err := h.DB.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "material not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if m.UserID != uid {
		// hide existence
		common.Fail(c, http.StatusNotFound, 40403, "material not found")
		return
	}

	if err := h.DB.Delete(&m).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"id": id})
}
