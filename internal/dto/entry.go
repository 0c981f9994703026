package dto

import "time"

// StudentOutcome is one student's result within a batch submission.
type StudentOutcome struct {
	StudentID string `json:"student_id" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=Y N A U"`
}

// SubmitEntriesRequest is a batch of outcomes recorded for one lesson taught
// to one group on one date.
type SubmitEntriesRequest struct {
	GroupID             string           `json:"group_id" binding:"required"`
	StaffID             string           `json:"staff_id" binding:"required"`
	LessonNumber        int              `json:"lesson_number" binding:"required,min=1,max=128"`
	EntryDate           string           `json:"entry_date" binding:"required,datetime=2006-01-02"`
	IsInitialAssessment bool             `json:"is_initial_assessment"`
	Outcomes            []StudentOutcome `json:"outcomes" binding:"required,min=1,dive"`
}

// StudentError reports a per-student failure that did not abort the batch.
type StudentError struct {
	StudentID string `json:"student_id"`
	Message   string `json:"message"`
}

// SubmitEntriesResult summarises what a batch submission did.
type SubmitEntriesResult struct {
	LessonNumber int            `json:"lesson_number"`
	GroupID      string         `json:"group_id"`
	EntryDate    time.Time      `json:"entry_date"`
	Created      int            `json:"created"`
	Updated      int            `json:"updated"`
	Unenrolled   []string       `json:"unenrolled,omitempty"`
	Errors       []StudentError `json:"errors,omitempty"`
}
