package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/interview"
	"github.com/prepforge/interview-platform/internal/models"
	"github.com/prepforge/interview-platform/internal/stats"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.UserSubject{},
		&models.StudyMaterial{},
		&interview.Interview{},
		&interview.Message{},
		&stats.ExportJob{},
	)
}

// PresetSubjects is the reference list inserted on first boot.
var PresetSubjects = []models.Subject{
	{Name: "Data Structures", Icon: "Binary", IsPreset: true},
	{Name: "Algorithms", Icon: "GitBranch", IsPreset: true},
	{Name: "Database Systems", Icon: "Database", IsPreset: true},
	{Name: "Operating Systems", Icon: "Cpu", IsPreset: true},
	{Name: "Computer Networks", Icon: "Network", IsPreset: true},
	{Name: "Machine Learning", Icon: "Brain", IsPreset: true},
	{Name: "Web Development", Icon: "Globe", IsPreset: true},
	{Name: "System Design", Icon: "Boxes", IsPreset: true},
	{Name: "Object-Oriented Programming", Icon: "Code", IsPreset: true},
	{Name: "Software Engineering", Icon: "Wrench", IsPreset: true},
	{Name: "Computer Architecture", Icon: "HardDrive", IsPreset: true},
	{Name: "Cybersecurity", Icon: "Shield", IsPreset: true},
}

func SeedSubjects(gdb *gorm.DB) error {
	for _, s := range PresetSubjects {
		var cnt int64
		if err := gdb.Model(&models.Subject{}).Where("name = ?", s.Name).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			continue
		}
		sub := s
		if err := gdb.Create(&sub).Error; err != nil {
			return err
		}
	}
	return nil
}
