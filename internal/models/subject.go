package models

import "time"

type Subject struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	Icon      string    `gorm:"type:varchar(64)" json:"icon,omitempty"`
	IsPreset  bool      `gorm:"not null;default:false" json:"is_preset"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subject) TableName() string { return "subjects" }

type UserSubject struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index:uniq_user_subject,unique,priority:1" json:"user_id"`
	SubjectID uint64    `gorm:"not null;index:uniq_user_subject,unique,priority:2" json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserSubject) TableName() string { return "user_subjects" }

type StudyMaterial struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index:idx_material_user_subject,priority:1" json:"user_id"`
	SubjectID uint64    `gorm:"not null;index:idx_material_user_subject,priority:2" json:"subject_id"`
	FileName  string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileType  string    `gorm:"type:varchar(64);not null" json:"file_type"`
	Content   string    `gorm:"type:mediumtext" json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (StudyMaterial) TableName() string { return "study_materials" }
