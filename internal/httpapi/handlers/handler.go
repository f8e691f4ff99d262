package handlers

import (
	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/config"
	"github.com/prepforge/interview-platform/internal/interview"
)

type Handler struct {
	DB  *gorm.DB
	Cfg config.Config
	Svc *interview.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, svc *interview.Service) *Handler {
	return &Handler{DB: db, Cfg: cfg, Svc: svc}
}
