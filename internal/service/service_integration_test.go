package service

import (
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 端到端覆盖 尝试 → 提交 → 结果 → 答案键变更追溯重算 的完整链路，
// 需要真实 MySQL，默认跳过。
func TestAttemptLifecycle_DBIntegration(t *testing.T) {
	if os.Getenv("EXAM_PORTAL_INTEGRATION") != "1" {
		t.Skip("set EXAM_PORTAL_INTEGRATION=1 to run integration tests")
	}

	dsn := os.Getenv("EXAM_PORTAL_TEST_DSN")
	if strings.TrimSpace(dsn) == "" {
		dsn = "root:root@tcp(localhost:3306)/exam_portal_test?charset=utf8mb4&parseTime=True&loc=Local"
	}

	logger.Log = zap.NewNop()

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Exam{}, &model.Question{},
		&model.ExamAttempt{}, &model.AttemptQuestion{},
		&model.Submission{}, &model.SubmissionAnswer{}, &model.ProjectSubmission{},
		&model.Result{}, &model.ResultQuestion{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	examRepo := repository.NewExamRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := NewNotificationService(notificationRepo, 30)
	stats := NewStatisticsService(db, nil, 300)
	recalc := NewRecalcService(attemptRepo, submissionRepo, resultRepo, stats, db)
	questionSvc := NewQuestionService(questionRepo, examRepo, recalc)
	submissionSvc := NewSubmissionService(submissionRepo)
	resultSvc := NewResultService(resultRepo, examRepo, notifier)
	attemptSvc := NewAttemptService(examRepo, questionRepo, attemptRepo, submissionSvc, resultSvc, notifier, db)

	const teacherID, studentID uint = 1, 42
	now := time.Now()

	exam := &model.Exam{
		Title:            fmt.Sprintf("ITEST Exam %d", now.UnixNano()),
		Type:             model.ExamTypeMCQ,
		Duration:         30,
		StartDate:        now.Add(-time.Hour),
		EndDate:          now.Add(time.Hour),
		CreatedBy:        teacherID,
		Status:           model.ExamPublished,
		IsPublic:         true,
		ShuffleQuestions: false,
		MaxAttempts:      2,
	}
	if err := examRepo.Create(exam); err != nil {
		t.Fatalf("seed exam: %v", err)
	}

	q1, err := questionSvc.AddQuestion(exam.ID, teacherID, QuestionRequest{
		Type: model.QuestionMCQ, Text: "2+2=?", Marks: 5,
		Options: []model.Option{{Text: "3"}, {Text: "4", IsCorrect: true}, {Text: "5"}},
	})
	if err != nil {
		t.Fatalf("seed q1: %v", err)
	}
	q2, err := questionSvc.AddQuestion(exam.ID, teacherID, QuestionRequest{
		Type: model.QuestionMCQ, Text: "3*3=?", Marks: 5,
		Options: []model.Option{{Text: "6"}, {Text: "9", IsCorrect: true}},
	})
	if err != nil {
		t.Fatalf("seed q2: %v", err)
	}
	tf, err := questionSvc.AddQuestion(exam.ID, teacherID, QuestionRequest{
		Type: model.QuestionTrueFalse, Text: "Go has generics", Marks: 3, CorrectAnswer: "true",
	})
	if err != nil {
		t.Fatalf("seed tf: %v", err)
	}

	attempt, err := attemptSvc.StartAttempt(studentID, exam.ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if attempt.AttemptNumber != 1 || len(attempt.Questions) != 3 {
		t.Fatalf("attempt = number %d with %d questions, want 1 with 3", attempt.AttemptNumber, len(attempt.Questions))
	}

	// 重复开始应恢复同一次尝试
	resumed, err := attemptSvc.StartAttempt(studentID, exam.ID)
	if err != nil {
		t.Fatalf("resume attempt: %v", err)
	}
	if resumed.ID != attempt.ID {
		t.Errorf("resume created a new attempt %d, want %d", resumed.ID, attempt.ID)
	}

	if err := attemptSvc.SaveAnswer(studentID, attempt.ID, q1.ID, "1"); err != nil {
		t.Fatalf("save answer: %v", err)
	}

	// q1 来自暂存，q2 答错，TrueFalse 提交时覆盖
	out, err := attemptSvc.SubmitAttempt(studentID, attempt.ID, []AnswerSubmission{
		{QuestionID: q2.ID, Answer: "0"},
		{QuestionID: tf.ID, Answer: "True"},
	}, SubmitMeta{IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}

	if out.Attempt.Status != model.AttemptSubmitted || out.Attempt.TotalMarks != 8 {
		t.Errorf("attempt after submit = %s/%d, want SUBMITTED/8", out.Attempt.Status, out.Attempt.TotalMarks)
	}
	if out.Submission.TotalMarksObtained != 8 || len(out.Submission.Answers) != 3 {
		t.Errorf("submission = %d marks over %d entries, want 8 over 3", out.Submission.TotalMarksObtained, len(out.Submission.Answers))
	}
	if out.Result.TotalMarks != 13 || out.Result.ObtainedMarks != 8 {
		t.Errorf("result = %d/%d, want 8/13", out.Result.ObtainedMarks, out.Result.TotalMarks)
	}
	if out.Result.Status != model.ResultPass {
		t.Errorf("result status = %s, want PASS", out.Result.Status)
	}
	if out.Result.IsReleased {
		t.Error("freshly compiled result must not be released")
	}

	// 已提交的尝试拒绝重复提交
	_, err = attemptSvc.SubmitAttempt(studentID, attempt.ID, nil, SubmitMeta{})
	if util.KindOf(err) != util.FaultStateConflict {
		t.Errorf("resubmit error = %v, want state conflict", err)
	}

	// 答案键从选项 1 移到选项 0：q1 由对变错，历史记录追溯重算
	_, err = questionSvc.UpdateQuestion(q1.ID, QuestionRequest{
		Type: model.QuestionMCQ, Text: "2+2=?", Marks: 5,
		Options: []model.Option{{Text: "3", IsCorrect: true}, {Text: "4"}, {Text: "5"}},
	})
	if err != nil {
		t.Fatalf("update key: %v", err)
	}

	reloaded, err := attemptRepo.FindByID(attempt.ID)
	if err != nil {
		t.Fatalf("reload attempt: %v", err)
	}
	if reloaded.TotalMarks != 3 {
		t.Errorf("attempt total after recalc = %d, want 3", reloaded.TotalMarks)
	}

	sub, err := submissionRepo.FindByCompoundKey(exam.ID, studentID, 1)
	if err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if sub.TotalMarksObtained != 3 {
		t.Errorf("submission total after recalc = %d, want 3", sub.TotalMarksObtained)
	}

	result, err := resultRepo.FindBySubmission(sub.ID)
	if err != nil {
		t.Fatalf("reload result: %v", err)
	}
	if result.ObtainedMarks != 3 {
		t.Errorf("result obtained after recalc = %d, want 3", result.ObtainedMarks)
	}
	wantPct := float64(3) / 13 * 100
	if math.Abs(result.Percentage-wantPct) > 0.01 {
		t.Errorf("result percentage after recalc = %v, want %v", result.Percentage, wantPct)
	}
	if result.Status != model.ResultFail {
		t.Errorf("result status after recalc = %s, want FAIL", result.Status)
	}

	// 重算是幂等的：键未变时再保存一遍不应改变任何得分
	if _, err := questionSvc.UpdateQuestion(q1.ID, QuestionRequest{
		Type: model.QuestionMCQ, Text: "2+2=? (reworded)", Marks: 5,
		Options: []model.Option{{Text: "3", IsCorrect: true}, {Text: "4"}, {Text: "5"}},
	}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	again, err := attemptRepo.FindByID(attempt.ID)
	if err != nil {
		t.Fatalf("reload attempt: %v", err)
	}
	if again.TotalMarks != reloaded.TotalMarks {
		t.Errorf("no-op key edit changed totals: %d -> %d", reloaded.TotalMarks, again.TotalMarks)
	}

	// 第二次尝试分配序号 2，全部未作答的提交判 0 分不通过
	second, err := attemptSvc.StartAttempt(studentID, exam.ID)
	if err != nil {
		t.Fatalf("start second attempt: %v", err)
	}
	if second.ID == attempt.ID || second.AttemptNumber != 2 {
		t.Fatalf("second attempt = id %d number %d, want new id with number 2", second.ID, second.AttemptNumber)
	}
	out2, err := attemptSvc.SubmitAttempt(studentID, second.ID, nil, SubmitMeta{})
	if err != nil {
		t.Fatalf("submit second attempt: %v", err)
	}
	if out2.Result.ObtainedMarks != 0 || out2.Result.Status != model.ResultFail {
		t.Errorf("empty submit = %d marks %s, want 0 FAIL", out2.Result.ObtainedMarks, out2.Result.Status)
	}
	if out2.Result.Analytics.SkippedQuestions != 3 {
		t.Errorf("skipped = %d, want 3", out2.Result.Analytics.SkippedQuestions)
	}

	// 上限已满，不能再开新尝试
	_, err = attemptSvc.StartAttempt(studentID, exam.ID)
	if util.KindOf(err) != util.FaultStateConflict {
		t.Errorf("attempt over limit error = %v, want state conflict", err)
	}
}
