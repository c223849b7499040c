package models

// Category groups objectives by the kind of care-coordination work involved.
type Category string

const (
	CategoryPhysicalTherapy Category = "Physical Therapy"
	CategoryMonitoring      Category = "Monitoring"
	CategoryEducation       Category = "Education"
	CategoryIntegration     Category = "Integration"
	CategoryAssessment      Category = "Assessment"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{
	CategoryPhysicalTherapy,
	CategoryMonitoring,
	CategoryEducation,
	CategoryIntegration,
	CategoryAssessment,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TargetDateLayout is the ISO calendar date format targetDate is stored in.
const TargetDateLayout = "2006-01-02"

// Objective is a persisted patient-activation task.
type Objective struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   Category `json:"category"`
	Status     Status   `json:"status"`
	Priority   Priority `json:"priority"`
	TargetDate string   `json:"targetDate"`
}

// InsertObjective is a validated create payload. Status is already defaulted.
type InsertObjective struct {
	Title      string   `json:"title"`
	Category   Category `json:"category"`
	Status     Status   `json:"status"`
	Priority   Priority `json:"priority"`
	TargetDate string   `json:"targetDate"`
}

// WithID builds the record that gets persisted for this payload.
func (in InsertObjective) WithID(id string) Objective {
	return Objective{
		ID:         id,
		Title:      in.Title,
		Category:   in.Category,
		Status:     in.Status,
		Priority:   in.Priority,
		TargetDate: in.TargetDate,
	}
}

// ObjectivePatch is a validated partial update. Only fields with Set are written.
type ObjectivePatch struct {
	Title      Optional[string]
	Category   Optional[Category]
	Status     Optional[Status]
	Priority   Optional[Priority]
	TargetDate Optional[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p ObjectivePatch) IsEmpty() bool {
	return !p.Title.Set && !p.Category.Set && !p.Status.Set && !p.Priority.Set && !p.TargetDate.Set
}

// Apply returns o with every present field of the patch written over it.
func (p ObjectivePatch) Apply(o Objective) Objective {
	if p.Title.Set {
		o.Title = p.Title.Value
	}
	if p.Category.Set {
		o.Category = p.Category.Value
	}
	if p.Status.Set {
		o.Status = p.Status.Value
	}
	if p.Priority.Set {
		o.Priority = p.Priority.Value
	}
	if p.TargetDate.Set {
		o.TargetDate = p.TargetDate.Value
	}
	return o
}

// ObjectivePayload is the request body as decoded from JSON, before validation.
type ObjectivePayload struct {
	Title      Optional[string] `json:"title"`
	Category   Optional[string] `json:"category"`
	Status     Optional[string] `json:"status"`
	Priority   Optional[string] `json:"priority"`
	TargetDate Optional[string] `json:"targetDate"`
}
