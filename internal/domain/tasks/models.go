package tasks

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
)

var Statuses = []string{StatusActive, StatusCompleted, StatusOverdue}

const (
	TypeDaily   = "daily"
	TypeWeekly  = "weekly"
	TypeMonthly = "monthly"
)

var Types = []string{TypeDaily, TypeWeekly, TypeMonthly}

var Categories = []string{"applications", "interviews", "assessments"}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Task is a countable target assigned to one employee. Achieved moves with
// submissions and never exceeds Target.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Target      int       `json:"target"`
	Achieved    int       `json:"achieved"`
	Unit        string    `json:"unit"`
	Deadline    time.Time `json:"deadline"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	AssignedTo  string    `json:"assignedTo"`
	AssignedBy  string    `json:"assignedBy"`
	Notes       string    `json:"notes,omitempty"`
	Recurring   bool      `json:"recurring"`
	Recurrence  string    `json:"recurrence,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Submission is one progress report against a task.
type Submission struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"taskId"`
	EmployeeID  string     `json:"employeeId"`
	Count       int        `json:"count"`
	Notes       string     `json:"notes,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Verified    bool       `json:"verified"`
	VerifiedBy  string     `json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty"`
}

// Analytics summarizes the submission history of one task.
type Analytics struct {
	Task           Task         `json:"task"`
	Submissions    []Submission `json:"submissions"`
	TotalSubmitted int          `json:"totalSubmitted"`
	AvgDaily       float64      `json:"avgDaily"`
	PeakCount      int          `json:"peakCount"`
	PeakDate       *time.Time   `json:"peakDate,omitempty"`
	CompletionRate float64      `json:"completionRate"`
}

// EmployeeStats aggregates one employee's assigned tasks.
type EmployeeStats struct {
	Total               int     `json:"totalTasks"`
	Active              int     `json:"activeTasks"`
	Completed           int     `json:"completedTasks"`
	Overdue             int     `json:"overdueTasks"`
	CompletionRate      float64 `json:"completionRate"`
	TotalSubmissions    int     `json:"totalSubmissions"`
	VerifiedSubmissions int     `json:"verifiedSubmissions"`
	Tasks               []Task  `json:"tasks"`
}
