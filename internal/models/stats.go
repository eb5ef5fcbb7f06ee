package models

import "time"

// InstituteAssignmentStats aggregates submission behaviour across an
// institute. Percentages are 0 when the corresponding denominator is 0.
type InstituteAssignmentStats struct {
	OnTimePercent           float64 `json:"onTimePercent"`
	LatePercent             float64 `json:"latePercent"`
	MissedPercent           float64 `json:"missedPercent"`
	StudentsWithPastDueWork int     `json:"countOfStudentsWithPastDueWork"`
}

// StudentAttitudeStats summarises journal sentiment across an institute.
// A student is analyzed once they have at least one entry inside the
// lookback window.
type StudentAttitudeStats struct {
	PositivePercent          float64 `json:"positivePercent"`
	NegativePercent          float64 `json:"negativePercent"`
	NeutralPercent           float64 `json:"neutralPercent"`
	AnalyzedStudentCount     int     `json:"analyzedStudentCount"`
	TotalStudentsInInstitute int     `json:"totalStudentsInInstitute"`
}

// SystemMetricsSnapshot is a point-in-time view of runtime metrics exposed
// on the admin dashboard.
type SystemMetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOpCount             uint64    `json:"storeOpCount"`
	AverageStoreOpDurationMs float64   `json:"averageStoreOpDurationMs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
