package database

import (
	"exam_portal_backend/internal/config"
	"exam_portal_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Department{},
		&model.Exam{},
		&model.Question{},
		&model.ExamAttempt{},
		&model.AttemptQuestion{},
		&model.Submission{},
		&model.SubmissionAnswer{},
		&model.ProjectSubmission{},
		&model.Result{},
		&model.ResultQuestion{},
		&model.Notification{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认院系（为空时插入，方便本地启动）
	var count int64
	db.Model(&model.Department{}).Count(&count)
	if count == 0 {
		defaults := []model.Department{
			{Name: "General", Description: "Default department", IsActive: true},
			{Name: "Computer Science", Description: "Computer science department", IsActive: true},
		}
		for _, d := range defaults {
			db.Create(&d)
		}
	}

	return db, nil
}
