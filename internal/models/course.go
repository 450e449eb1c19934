package models

import (
	"fmt"
	"time"
)

// MaxClassDurationMinutes bounds a single session.
const MaxClassDurationMinutes = 300

// Course is a catalog entry such as "YOGA 101".
type Course struct {
	ID         string    `db:"id" json:"id"`
	Category   string    `db:"category" json:"category"`
	CatalogNum int       `db:"catalog_num" json:"catalog_num"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DisplayName renders the course as category plus zero-padded catalog number.
func (c Course) DisplayName() string {
	return fmt.Sprintf("%s %03d", c.Category, c.CatalogNum)
}

// Class is a weekly recurring session of a course taught by one trainer. It meets on the
// weekday of StartTime, at StartTime's clock time, from StartDate through EndDate.
type Class struct {
	ID              string    `db:"id" json:"id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	TrainerID       string    `db:"trainer_id" json:"trainer_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	Enrollment      int       `db:"enrollment" json:"enrollment"`
	Capacity        int       `db:"capacity" json:"capacity"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Weekday is the day the class meets.
func (c Class) Weekday() time.Weekday {
	return c.StartTime.Weekday()
}

// Duration returns the session length.
func (c Class) Duration() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

// Full reports whether no seat is left.
func (c Class) Full() bool {
	return c.Enrollment >= c.Capacity
}

// ActiveDuring reports whether the class's date window intersects [from, to].
func (c Class) ActiveDuring(from, to time.Time) bool {
	return !c.StartDate.After(to) && !c.EndDate.Before(from)
}

// Enrollment links a member to a class. The pair is unique.
type Enrollment struct {
	MemberID   string    `db:"member_id" json:"member_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollOutcome is the result of one atomic enrollment attempt.
type EnrollOutcome string

// Enrollment outcomes.
const (
	EnrollOutcomeEnrolled        EnrollOutcome = "ENROLLED"
	EnrollOutcomeAlreadyEnrolled EnrollOutcome = "ALREADY_ENROLLED"
	EnrollOutcomeFull            EnrollOutcome = "FULL"
)

// ClassConflict reports whether a proposed schedule collides with an existing class.
type ClassConflict struct {
	Conflict        bool   `json:"conflict"`
	ConflictClassID string `json:"conflict_class_id,omitempty"`
}
