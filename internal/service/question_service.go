package service

import (
	"encoding/json"
	"errors"

	"exam_portal_backend/internal/grading"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	ExamRepo     *repository.ExamRepository
	Recalc       *RecalcService
}

func NewQuestionService(questionRepo *repository.QuestionRepository, examRepo *repository.ExamRepository, recalc *RecalcService) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		ExamRepo:     examRepo,
		Recalc:       recalc,
	}
}

type QuestionRequest struct {
	Type          model.QuestionType `json:"type" binding:"required"`
	Text          string             `json:"text" binding:"required"`
	Marks         int                `json:"marks" binding:"required,min=1"`
	Options       []model.Option     `json:"options"`
	CorrectAnswer string             `json:"correctAnswer"`
	Explanation   string             `json:"explanation"`
	Images        []model.QuestionImage `json:"images"`
	Difficulty    string             `json:"difficulty"`
	Tags          []string           `json:"tags"`
}

// validate 创作校验是防线的第一层：损坏的答案键绝不允许入库。
// 判分路径的兜底只为历史脏数据兜底。
func (s *QuestionService) validate(req *QuestionRequest) error {
	switch req.Type {
	case model.QuestionMCQ:
		if len(req.Options) < 2 {
			return util.Validationf("MCQ question requires at least 2 options")
		}
		correct := 0
		for _, opt := range req.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return util.Validationf("MCQ question requires exactly one correct option, got %d", correct)
		}
	case model.QuestionTrueFalse:
		normalized := grading.Normalize(req.CorrectAnswer)
		if normalized != "true" && normalized != "false" {
			return util.Validationf("TrueFalse answer must be \"true\" or \"false\"")
		}
		req.CorrectAnswer = normalized
	case model.QuestionShortAnswer, model.QuestionEssay:
		// 人工评阅，参考答案可选
	default:
		return util.Validationf("unknown question type %q", req.Type)
	}
	return nil
}

func (s *QuestionService) buildQuestion(examID, creatorID uint, req QuestionRequest) (*model.Question, error) {
	q := &model.Question{
		ExamID:        examID,
		Type:          req.Type,
		Text:          req.Text,
		Marks:         req.Marks,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Difficulty:    req.Difficulty,
		CreatedBy:     creatorID,
		IsActive:      true,
	}
	if q.Difficulty == "" {
		q.Difficulty = "Medium"
	}
	if len(req.Options) > 0 {
		if err := q.SetOptions(req.Options); err != nil {
			return nil, err
		}
	}
	if len(req.Images) > 0 {
		raw, err := json.Marshal(req.Images)
		if err != nil {
			return nil, err
		}
		q.Images = raw
	}
	if len(req.Tags) > 0 {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, err
		}
		q.Tags = raw
	}
	return q, nil
}

func (s *QuestionService) AddQuestion(examID, creatorID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.ExamRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	q, err := s.buildQuestion(examID, creatorID, req)
	if err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) AddQuestionsBatch(examID, creatorID uint, reqs []QuestionRequest) ([]model.Question, error) {
	if _, err := s.ExamRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	questions := make([]model.Question, 0, len(reqs))
	for i := range reqs {
		if err := s.validate(&reqs[i]); err != nil {
			return nil, err
		}
		q, err := s.buildQuestion(examID, creatorID, reqs[i])
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	if err := s.QuestionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) ListByExam(examID uint) ([]model.Question, error) {
	return s.QuestionRepo.ListByExam(examID)
}

// UpdateQuestion 答案键变更会触发对全部历史判分记录的追溯重算
func (s *QuestionService) UpdateQuestion(questionID uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.GetQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if err := s.validateUpdate(q, &req); err != nil {
		return nil, err
	}

	keyChanged := s.answerKeyChanged(q, req)

	q.Text = req.Text
	q.Marks = req.Marks
	q.CorrectAnswer = req.CorrectAnswer
	q.Explanation = req.Explanation
	if req.Difficulty != "" {
		q.Difficulty = req.Difficulty
	}
	if len(req.Options) > 0 {
		if err := q.SetOptions(req.Options); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		raw, err := json.Marshal(req.Images)
		if err != nil {
			return nil, err
		}
		q.Images = raw
	}
	if req.Tags != nil {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, err
		}
		q.Tags = raw
	}

	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}

	if keyChanged {
		if err := s.Recalc.OnAnswerKeyChanged(q); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// validateUpdate 题型固定，换题型会让存量作答记录失去判分依据
func (s *QuestionService) validateUpdate(old *model.Question, req *QuestionRequest) error {
	if req.Type != old.Type {
		return util.Validationf("question type cannot be changed from %s to %s", old.Type, req.Type)
	}
	return s.validate(req)
}

func (s *QuestionService) answerKeyChanged(old *model.Question, req QuestionRequest) bool {
	switch old.Type {
	case model.QuestionMCQ:
		if len(req.Options) == 0 {
			return false
		}
		oldCorrect, _ := grading.CanonicalCorrectOption(old.OptionList())
		newCorrect, _ := grading.CanonicalCorrectOption(req.Options)
		return oldCorrect != newCorrect
	case model.QuestionTrueFalse:
		return grading.Normalize(old.CorrectAnswer) != grading.Normalize(req.CorrectAnswer)
	}
	return false
}

// DeleteQuestion 软删题目并从全部历史判分记录中摘除。
// 已发布考试不允许删到一题不剩。
func (s *QuestionService) DeleteQuestion(questionID uint) error {
	q, err := s.GetQuestion(questionID)
	if err != nil {
		return err
	}
	exam, err := s.ExamRepo.FindByID(q.ExamID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if exam != nil && exam.Status == model.ExamPublished && exam.Type != model.ExamTypeProject {
		count, err := s.QuestionRepo.CountByExam(q.ExamID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return util.StateConflictf("cannot delete the last question of a published exam")
		}
	}
	if err := s.QuestionRepo.Delete(questionID); err != nil {
		return err
	}
	return s.Recalc.OnQuestionDeleted(q)
}
