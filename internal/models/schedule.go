package models

import "time"

// Days of the week accepted for schedules.
var WeekDays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// Schedule binds a teacher, a class, and a subject to a weekly time slot.
// Times are "HH:MM" wall-clock strings.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	StartsAt  string    `db:"starts_at" json:"starts_at"`
	EndsAt    string    `db:"ends_at" json:"ends_at"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleDetail joins in the display names of the referenced entities.
type ScheduleDetail struct {
	Schedule
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// ScheduleConflict describes an existing schedule that blocks a write.
type ScheduleConflict struct {
	ScheduleID string `json:"schedule_id"`
	TeacherID  string `json:"teacher_id"`
	ClassID    string `json:"class_id"`
	DayOfWeek  string `json:"day_of_week"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	Dimension  string `json:"dimension"`
}

// ScheduleConflictError is returned when a schedule overlaps an existing one.
type ScheduleConflictError struct {
	Type     string           `json:"type"`
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
