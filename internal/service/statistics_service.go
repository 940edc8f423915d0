package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	examStatsKeyPrefix    = "stats:exam:"
	studentStatsKeyPrefix = "stats:student:"
	deptStatsKeyPrefix    = "stats:department:"
)

// StatisticsService 面向教师与管理端的聚合读模型，与判分写路径分离。
// 聚合从已持久化的结果计算，Redis 缓存 + TTL，键变更重算后主动失效。
type StatisticsService struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewStatisticsService(db *gorm.DB, rdb *redis.Client, cacheTTLSeconds int) *StatisticsService {
	return &StatisticsService{
		DB:       db,
		Redis:    rdb,
		CacheTTL: time.Duration(cacheTTLSeconds) * time.Second,
	}
}

type ExamStatistics struct {
	ExamID            uint           `json:"examId"`
	TotalAttempts     int64          `json:"totalAttempts"`
	TotalSubmissions  int64          `json:"totalSubmissions"`
	TotalResults      int64          `json:"totalResults"`
	AveragePercentage float64        `json:"averagePercentage"`
	HighestPercentage float64        `json:"highestPercentage"`
	LowestPercentage  float64        `json:"lowestPercentage"`
	PassCount         int64          `json:"passCount"`
	PassRate          float64        `json:"passRate"`
	GradeDistribution map[string]int `json:"gradeDistribution"`
	ComputedAt        time.Time      `json:"computedAt"`
}

func (s *StatisticsService) ExamStatistics(ctx context.Context, examID uint) (*ExamStatistics, error) {
	key := fmt.Sprintf("%s%d", examStatsKeyPrefix, examID)
	if cached := s.fromCache(ctx, key); cached != nil {
		var stats ExamStatistics
		if json.Unmarshal(cached, &stats) == nil {
			return &stats, nil
		}
	}

	stats := &ExamStatistics{ExamID: examID, GradeDistribution: make(map[string]int)}

	if err := s.DB.Model(&model.ExamAttempt{}).Where("exam_id = ?", examID).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Submission{}).Where("exam_id = ?", examID).Count(&stats.TotalSubmissions).Error; err != nil {
		return nil, err
	}

	var agg struct {
		Count int64
		Avg   float64
		Max   float64
		Min   float64
	}
	err := s.DB.Model(&model.Result{}).Where("exam_id = ?", examID).
		Select("COUNT(*) as count, COALESCE(AVG(percentage),0) as avg, COALESCE(MAX(percentage),0) as max, COALESCE(MIN(percentage),0) as min").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	stats.TotalResults = agg.Count
	stats.AveragePercentage = agg.Avg
	stats.HighestPercentage = agg.Max
	stats.LowestPercentage = agg.Min

	if err := s.DB.Model(&model.Result{}).
		Where("exam_id = ? AND status = ?", examID, model.ResultPass).
		Count(&stats.PassCount).Error; err != nil {
		return nil, err
	}
	if stats.TotalResults > 0 {
		stats.PassRate = float64(stats.PassCount) / float64(stats.TotalResults) * 100
	}

	var rows []struct {
		Grade string
		Count int
	}
	err = s.DB.Model(&model.Result{}).Where("exam_id = ?", examID).
		Select("grade, COUNT(*) as count").Group("grade").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Grade != "" {
			stats.GradeDistribution[row.Grade] = row.Count
		}
	}
	stats.ComputedAt = time.Now()

	s.toCache(ctx, key, stats)
	return stats, nil
}

type StudentOverview struct {
	StudentID         uint           `json:"studentId"`
	ExamsTaken        int64          `json:"examsTaken"`
	AveragePercentage float64        `json:"averagePercentage"`
	PassedCount       int64          `json:"passedCount"`
	BestPercentage    float64        `json:"bestPercentage"`
	Recent            []model.Result `json:"recent"`
	ComputedAt        time.Time      `json:"computedAt"`
}

func (s *StatisticsService) StudentOverview(ctx context.Context, studentID uint) (*StudentOverview, error) {
	key := fmt.Sprintf("%s%d", studentStatsKeyPrefix, studentID)
	if cached := s.fromCache(ctx, key); cached != nil {
		var overview StudentOverview
		if json.Unmarshal(cached, &overview) == nil {
			return &overview, nil
		}
	}

	overview := &StudentOverview{StudentID: studentID}

	var agg struct {
		Count int64
		Avg   float64
		Max   float64
	}
	err := s.DB.Model(&model.Result{}).
		Where("student_id = ? AND is_released = ?", studentID, true).
		Select("COUNT(*) as count, COALESCE(AVG(percentage),0) as avg, COALESCE(MAX(percentage),0) as max").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	overview.ExamsTaken = agg.Count
	overview.AveragePercentage = agg.Avg
	overview.BestPercentage = agg.Max

	err = s.DB.Model(&model.Result{}).
		Where("student_id = ? AND is_released = ? AND status = ?", studentID, true, model.ResultPass).
		Count(&overview.PassedCount).Error
	if err != nil {
		return nil, err
	}

	err = s.DB.Where("student_id = ? AND is_released = ?", studentID, true).
		Order("created_at desc").Limit(5).Find(&overview.Recent).Error
	if err != nil {
		return nil, err
	}
	overview.ComputedAt = time.Now()

	s.toCache(ctx, key, overview)
	return overview, nil
}

type DepartmentStatistics struct {
	DepartmentID      uint    `json:"departmentId"`
	ExamCount         int64   `json:"examCount"`
	ResultCount       int64   `json:"resultCount"`
	AveragePercentage float64 `json:"averagePercentage"`
	PassRate          float64 `json:"passRate"`
}

func (s *StatisticsService) DepartmentStatistics(ctx context.Context, departmentID uint) (*DepartmentStatistics, error) {
	key := fmt.Sprintf("%s%d", deptStatsKeyPrefix, departmentID)
	if cached := s.fromCache(ctx, key); cached != nil {
		var stats DepartmentStatistics
		if json.Unmarshal(cached, &stats) == nil {
			return &stats, nil
		}
	}

	stats := &DepartmentStatistics{DepartmentID: departmentID}

	if err := s.DB.Model(&model.Exam{}).Where("department_id = ?", departmentID).Count(&stats.ExamCount).Error; err != nil {
		return nil, err
	}

	var agg struct {
		Count int64
		Avg   float64
		Pass  int64
	}
	err := s.DB.Model(&model.Result{}).
		Joins("JOIN exams ON exams.id = results.exam_id").
		Where("exams.department_id = ?", departmentID).
		Select("COUNT(*) as count, COALESCE(AVG(results.percentage),0) as avg, SUM(CASE WHEN results.status = 'PASS' THEN 1 ELSE 0 END) as pass").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	stats.ResultCount = agg.Count
	stats.AveragePercentage = agg.Avg
	if agg.Count > 0 {
		stats.PassRate = float64(agg.Pass) / float64(agg.Count) * 100
	}

	s.toCache(ctx, key, stats)
	return stats, nil
}

// InvalidateExam 追溯重算后该考试的缓存统计立即失效
func (s *StatisticsService) InvalidateExam(examID uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("%s%d", examStatsKeyPrefix, examID)
	if err := s.Redis.Del(context.Background(), key).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("failed to invalidate exam statistics cache",
			zap.Uint("examId", examID), zap.Error(err))
	}
}

func (s *StatisticsService) fromCache(ctx context.Context, key string) []byte {
	if s.Redis == nil {
		return nil
	}
	val, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return val
}

func (s *StatisticsService) toCache(ctx context.Context, key string, v interface{}) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, raw, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("failed to cache statistics", zap.String("key", key), zap.Error(err))
	}
}
