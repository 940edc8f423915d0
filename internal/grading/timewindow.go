package grading

import (
	"time"

	"exam_portal_backend/internal/model"
)

// Remaining 返回尝试的剩余时间，已过截止返回 0
func Remaining(attempt *model.ExamAttempt, now time.Time) time.Duration {
	d := attempt.EndTime.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// IsExpired 尝试是否已过截止时间
func IsExpired(attempt *model.ExamAttempt, now time.Time) bool {
	return now.After(attempt.EndTime)
}
