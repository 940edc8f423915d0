package service

import (
	"context"
	"testing"
)

// redis连不上时统计走无缓存路径，不应panic也不应返回脏数据
func TestStatisticsCacheToleratesMissingRedis(t *testing.T) {
	s := NewStatisticsService(nil, nil, 60)
	ctx := context.Background()

	if got := s.fromCache(ctx, examStatsKeyPrefix+"1"); got != nil {
		t.Errorf("fromCache without redis = %v, want nil", got)
	}
	s.toCache(ctx, examStatsKeyPrefix+"1", &ExamStatistics{ExamID: 1})
	s.InvalidateExam(1)
}
