package service

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"exam_portal_backend/internal/grading"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	ExamRepo      *repository.ExamRepository
	QuestionRepo  *repository.QuestionRepository
	AttemptRepo   *repository.AttemptRepository
	SubmissionSvc *SubmissionService
	ResultSvc     *ResultService
	Notifier      *NotificationService
	DB            *gorm.DB
}

func NewAttemptService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	submissionSvc *SubmissionService,
	resultSvc *ResultService,
	notifier *NotificationService,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		ExamRepo:      examRepo,
		QuestionRepo:  questionRepo,
		AttemptRepo:   attemptRepo,
		SubmissionSvc: submissionSvc,
		ResultSvc:     resultSvc,
		Notifier:      notifier,
		DB:            db,
	}
}

func parseOptionIndex(s string) int {
	idx, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return idx
}

// StartAttempt 开始一次考试尝试。题目顺序（含洗牌决定）在创建时一次性
// 确定并随快照持久化，之后读取永远按持久化顺序返回。
func (s *AttemptService) StartAttempt(studentID, examID uint) (*model.ExamAttempt, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}

	if exam.Status != model.ExamPublished {
		return nil, util.StateConflictf("exam is not published")
	}
	if !exam.IsStudentAllowed(studentID) {
		return nil, util.Authorizationf("you are not allowed to take this exam")
	}
	now := time.Now()
	if now.Before(exam.StartDate) || now.After(exam.EndDate) {
		return nil, util.StateConflictf("exam is not currently open")
	}

	// 已有未完成的尝试则恢复它，过期的先终结
	existing, err := s.AttemptRepo.FindInProgress(studentID, examID)
	if err == nil {
		if grading.IsExpired(existing, now) {
			existing.Status = model.AttemptExpired
			if err := s.AttemptRepo.Update(existing); err != nil {
				return nil, err
			}
		} else {
			return existing, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	count, err := s.AttemptRepo.CountByStudentExam(studentID, examID)
	if err != nil {
		return nil, err
	}
	if int(count) >= exam.MaxAttempts {
		return nil, util.StateConflictf("maximum attempts (%d) reached", exam.MaxAttempts)
	}

	questions, err := s.QuestionRepo.ListByExam(examID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 && exam.Type != model.ExamTypeProject {
		return nil, util.StateConflictf("exam has no questions")
	}

	order := make([]int, len(questions))
	for i := range order {
		order[i] = i
	}
	if exam.ShuffleQuestions {
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	attempt := &model.ExamAttempt{
		ExamID:        examID,
		StudentID:     studentID,
		StartTime:     now,
		EndTime:       now.Add(time.Duration(exam.Duration) * time.Minute),
		Status:        model.AttemptInProgress,
		AttemptNumber: int(count) + 1,
	}
	for pos, idx := range order {
		attempt.Questions = append(attempt.Questions, model.AttemptQuestion{
			QuestionID: questions[idx].ID,
			Position:   pos,
		})
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	logger.Log.Info("exam attempt started",
		zap.Uint("examId", examID), zap.Uint("studentId", studentID),
		zap.Int("attemptNumber", attempt.AttemptNumber), zap.Bool("shuffled", exam.ShuffleQuestions))
	return attempt, nil
}

// GetAttempt 访问即惰性过期：进行中的尝试已过截止时间就地终结
func (s *AttemptService) GetAttempt(requesterID uint, role model.UserRole, attemptID uint) (*model.ExamAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if role == model.Student && attempt.StudentID != requesterID {
		return nil, util.Authorizationf("attempt belongs to another student")
	}

	if attempt.Status == model.AttemptInProgress && grading.IsExpired(attempt, time.Now()) {
		attempt.Status = model.AttemptExpired
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return nil, err
		}
	}
	return attempt, nil
}

func (s *AttemptService) Remaining(attempt *model.ExamAttempt) time.Duration {
	return grading.Remaining(attempt, time.Now())
}

// SaveAnswer 作答期间暂存单题答案，提交时可整体覆盖
func (s *AttemptService) SaveAnswer(studentID, attemptID, questionID uint, answer string) error {
	attempt, err := s.GetAttempt(studentID, model.Student, attemptID)
	if err != nil {
		return err
	}
	if attempt.IsCompleted() {
		return util.StateConflictf("attempt is no longer in progress")
	}

	for i := range attempt.Questions {
		if attempt.Questions[i].QuestionID == questionID {
			attempt.Questions[i].Answer = answer
			return s.AttemptRepo.UpdateQuestionEntry(&attempt.Questions[i])
		}
	}
	return util.Validationf("question %d is not part of this attempt", questionID)
}

type AnswerSubmission struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

type SubmitResult struct {
	Attempt    *model.ExamAttempt `json:"attempt"`
	Submission *model.Submission  `json:"submission"`
	Result     *model.Result      `json:"result"`
}

// SubmitAttempt 提交即判分。已提交的尝试拒绝重复提交；已过期的尝试
// 允许补提交（过期 → 已提交），超时标志随提交记录保留。
func (s *AttemptService) SubmitAttempt(studentID, attemptID uint, answers []AnswerSubmission, meta SubmitMeta) (*SubmitResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.Authorizationf("attempt belongs to another student")
	}
	if attempt.Status == model.AttemptSubmitted {
		return nil, util.StateConflictf("attempt has already been submitted")
	}

	now := time.Now()
	forced := attempt.Status == model.AttemptExpired || grading.IsExpired(attempt, now)
	meta.IsLate = meta.IsLate || forced

	exam, err := s.ExamRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	// 暂存的答案作基底，本次提交的覆盖其上
	answerMap := make(map[uint]string, len(attempt.Questions))
	for _, entry := range attempt.Questions {
		if entry.Answer != "" {
			answerMap[entry.QuestionID] = entry.Answer
		}
	}
	for _, a := range answers {
		answerMap[a.QuestionID] = a.Answer
	}

	questions, err := s.snapshotQuestions(attempt)
	if err != nil {
		return nil, err
	}

	grade := grading.GradeAttempt(questions, answerMap)
	for _, qid := range grade.KeyFaults {
		logger.Log.Error("grading proceeded with faulty answer key",
			zap.Uint("questionId", qid), zap.Uint("attemptId", attempt.ID))
	}

	attempt.Status = model.AttemptSubmitted
	attempt.SubmittedAt = &now
	attempt.TotalMarks = grade.TotalMarks
	for i := range attempt.Questions {
		entry := &attempt.Questions[i]
		entry.Answer = answerMap[entry.QuestionID]
		entry.Marks = grade.PerQuestion[entry.QuestionID]
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range attempt.Questions {
			if err := tx.Save(&attempt.Questions[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.ExamAttempt{}).Where("id = ?", attempt.ID).
			Updates(map[string]interface{}{
				"status":       attempt.Status,
				"submitted_at": attempt.SubmittedAt,
				"total_marks":  attempt.TotalMarks,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	sub, err := s.SubmissionSvc.UpsertFromAttempt(exam, attempt, grade, meta)
	if err != nil {
		return nil, err
	}

	timeSpent := int(now.Sub(attempt.StartTime).Seconds())
	if max := int(attempt.EndTime.Sub(attempt.StartTime).Seconds()); timeSpent > max {
		timeSpent = max
	}
	result, err := s.ResultSvc.CompileForSubmission(exam, sub, questions, timeSpent)
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify(studentID, nil, model.NotifySubmissionReceived,
		"Submission received", "Your answers for \""+exam.Title+"\" have been recorded",
		map[string]interface{}{"examId": exam.ID, "submissionId": sub.ID})

	monitoring.AttemptsSubmitted.WithLabelValues(string(exam.Type), strconv.FormatBool(forced)).Inc()
	logger.Log.Info("exam attempt submitted",
		zap.Uint("attemptId", attempt.ID), zap.Uint("examId", exam.ID),
		zap.Int("totalMarks", grade.TotalMarks), zap.Bool("forced", forced),
		zap.Bool("needsManual", grade.NeedsManual))

	return &SubmitResult{Attempt: attempt, Submission: sub, Result: result}, nil
}

// snapshotQuestions 按尝试快照取题目定义，软删的题目不再参与判分
func (s *AttemptService) snapshotQuestions(attempt *model.ExamAttempt) ([]model.Question, error) {
	all, err := s.QuestionRepo.ListByExam(attempt.ExamID)
	if err != nil {
		return nil, err
	}
	inSnapshot := make(map[uint]bool, len(attempt.Questions))
	for _, entry := range attempt.Questions {
		inSnapshot[entry.QuestionID] = true
	}
	questions := make([]model.Question, 0, len(attempt.Questions))
	for _, q := range all {
		if inSnapshot[q.ID] {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// ManualGradeAttempt 教师对人工评阅题给分，给分钳制在 [0, 题目满分]。
// 给分写穿三层：尝试条目、提交条目、结果整体重编译。
func (s *AttemptService) ManualGradeAttempt(graderID, attemptID uint, scores []ManualScore) (*SubmitResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptSubmitted {
		return nil, util.StateConflictf("only submitted attempts can be graded")
	}

	exam, err := s.ExamRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}
	questions, err := s.snapshotQuestions(attempt)
	if err != nil {
		return nil, err
	}
	questionMap := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}

	answerByQuestion := make(map[uint]string, len(attempt.Questions))
	now := time.Now()
	total := 0
	for i := range attempt.Questions {
		entry := &attempt.Questions[i]
		answerByQuestion[entry.QuestionID] = entry.Answer
		for j := range scores {
			if scores[j].QuestionID != entry.QuestionID {
				continue
			}
			q, ok := questionMap[entry.QuestionID]
			if !ok {
				continue
			}
			marks := scores[j].Marks
			if marks < 0 {
				marks = 0
			}
			if marks > q.Marks {
				marks = q.Marks
			}
			entry.Marks = marks
			if err := s.AttemptRepo.UpdateQuestionEntry(entry); err != nil {
				return nil, err
			}
		}
		total += entry.Marks
	}

	attempt.TotalMarks = total
	attempt.GradedBy = &graderID
	attempt.GradedAt = &now
	if err := s.AttemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	sub, err := s.SubmissionSvc.FindByCompoundKey(attempt.ExamID, attempt.StudentID, attempt.AttemptNumber)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i].AnswerText = answerByQuestion[scores[i].QuestionID]
	}
	if err := s.SubmissionSvc.ApplyManualScores(sub, questionMap, scores); err != nil {
		return nil, err
	}

	timeSpent := 0
	if attempt.SubmittedAt != nil {
		timeSpent = int(attempt.SubmittedAt.Sub(attempt.StartTime).Seconds())
	}
	result, err := s.ResultSvc.CompileForSubmission(exam, sub, questions, timeSpent)
	if err != nil {
		return nil, err
	}
	feedback := make(map[uint]string, len(scores))
	for _, score := range scores {
		feedback[score.QuestionID] = score.Feedback
	}
	if err := s.ResultSvc.ApplyQuestionFeedback(result, feedback); err != nil {
		return nil, err
	}

	s.Notifier.Notify(attempt.StudentID, &graderID, model.NotifyExamGraded,
		"Exam graded", "Your attempt for \""+exam.Title+"\" has been graded",
		map[string]interface{}{"examId": exam.ID, "resultId": result.ID})

	return &SubmitResult{Attempt: attempt, Submission: sub, Result: result}, nil
}

func (s *AttemptService) ListByStudent(studentID, examID uint, page, limit int) ([]model.ExamAttempt, int, error) {
	return s.AttemptRepo.ListByStudent(studentID, examID, page, limit)
}

func (s *AttemptService) ListByExam(examID uint, page, limit int) ([]model.ExamAttempt, int, error) {
	return s.AttemptRepo.ListByExam(examID, page, limit)
}
