package models

import "time"

// NegativeBalanceMember is a row of the negative-balance report.
type NegativeBalanceMember struct {
	MemberID     string `db:"id" json:"member_id"`
	Name         string `db:"name" json:"name"`
	Phone        string `db:"phone" json:"phone"`
	BalanceCents int64  `db:"balance_cents" json:"balance_cents"`
}

// TrainerHours is a row of the trainer monthly hours report.
type TrainerHours struct {
	TrainerID   string  `json:"trainer_id"`
	TrainerName string  `json:"trainer_name"`
	Hours       float64 `json:"hours"`
}

// TrainerHoursReport lists hours for every trainer in a month.
type TrainerHoursReport struct {
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`
	Trainers []TrainerHours `json:"trainers"`
}

// ScheduleSlot is one weekly session in a member's monthly schedule.
type ScheduleSlot struct {
	ClassID    string       `json:"class_id"`
	CourseName string       `json:"course_name"`
	Weekday    time.Weekday `json:"weekday"`
	StartHour  string       `json:"start"`
	EndHour    string       `json:"end"`
}

// ExportStatus tracks an asynchronous report export.
type ExportStatus string

// Export lifecycle states.
const (
	ExportStatusQueued    ExportStatus = "QUEUED"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob describes a requested report export.
type ExportJob struct {
	ID          string       `json:"id"`
	Report      string       `json:"report"`
	Format      string       `json:"format"`
	Year        int          `json:"year,omitempty"`
	Month       int          `json:"month,omitempty"`
	Status      ExportStatus `json:"status"`
	File        string       `json:"file,omitempty"`
	Error       string       `json:"error,omitempty"`
	RequestedAt time.Time    `json:"requested_at"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
}

// SystemMetrics is a point-in-time summary of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	OperationsTotal          uint64    `json:"operations_total"`
	OperationFailures        uint64    `json:"operation_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
