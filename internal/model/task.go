package model

import "time"

// TaskType classifies a verification task.
type TaskType string

const (
	TaskSourceRetrieval TaskType = "SOURCE_RETRIEVAL"
	TaskPlausibility    TaskType = "PLAUSIBILITY_REVIEW"
	TaskDivergence      TaskType = "SOURCE_DIVERGENCE"
)

// TaskStatus is the lifecycle state of a verification task.
type TaskStatus string

const (
	TaskOpen     TaskStatus = "OPEN"
	TaskApproved TaskStatus = "APPROVED"
	TaskResolved TaskStatus = "RESOLVED"
)

// VerificationTask is a human-review work item raised by the engine: a
// product missing core nutrients, a divergent consensus key, or a
// plausibility ERROR.
type VerificationTask struct {
	ID          string     `json:"id"`
	TaskType    TaskType   `json:"task_type"`
	Severity    string     `json:"severity"`
	Status      TaskStatus `json:"status"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProductID   string     `json:"product_id,omitempty"`
	Payload     string     `json:"payload,omitempty"` // JSON detail blob
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Version     int        `json:"version"`
}

// VerificationReview records one accept/reject decision on a task.
type VerificationReview struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	ReviewedBy string    `json:"reviewed_by"`
	Decision   string    `json:"decision"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
