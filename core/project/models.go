package project

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/elearn360/backend/core"
)

// Project statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusOnHold    = "on_hold"
	StatusCancelled = "cancelled"
)

// Billing modes.
const (
	BillingPerModule = "per_module"
	BillingFixed     = "fixed"
)

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// Deliverable statuses.
const (
	DeliverablePending  = "pending"
	DeliverableInReview = "in_review"
	DeliverableApproved = "approved"
	DeliverableRejected = "rejected"
)

var AllDeliverableStatuses = []string{
	DeliverablePending, DeliverableInReview, DeliverableApproved, DeliverableRejected,
}

type (
	// Project is one commissioned production run. Modules lists the catalog
	// module IDs it was assembled from; CatalogVersion pins the catalog
	// version the tasks were expanded from, so later catalog edits never
	// touch this project.
	Project struct {
		ID             string             `json:"id"`
		Name           string             `json:"name"`
		Client         string             `json:"client"`
		Description    string             `json:"description,omitempty"`
		StartDate      time.Time          `json:"start_date"`
		EndDate        time.Time          `json:"end_date"`
		Status         string             `json:"status"`
		BillingMode    string             `json:"billing_mode"`
		TotalCost      float64            `json:"total_cost"`
		EnrollmentFee  float64            `json:"enrollment_fee"`
		Modules        []string           `json:"modules"`
		ModuleCosts    map[string]float64 `json:"module_costs,omitempty"`
		CatalogVersion int                `json:"catalog_version"`
		CreatedBy      string             `json:"created_by,omitempty"`
		CreatedAt      time.Time          `json:"created_at"`
		UpdatedAt      time.Time          `json:"updated_at"`
	}

	Task struct {
		ID           string          `json:"id"`
		ProjectID    string          `json:"project_id"`
		ModuleID     string          `json:"module_id,omitempty"`
		Title        string          `json:"title"`
		Description  string          `json:"description,omitempty"`
		Status       string          `json:"status"`
		DueDate      *time.Time      `json:"due_date,omitempty"`
		Department   string          `json:"department,omitempty"`
		AssigneeID   string          `json:"assignee_id,omitempty"`
		Checklist    []ChecklistItem `json:"checklist"`
		Deliverables []Deliverable   `json:"deliverables"`
		CreatedAt    time.Time       `json:"created_at"`
		UpdatedAt    time.Time       `json:"updated_at"`
	}

	// ChecklistItem order is insertion order and is preserved for display.
	ChecklistItem struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}

	Deliverable struct {
		ID          string     `json:"id"`
		TaskID      string     `json:"task_id"`
		Name        string     `json:"name"`
		Description string     `json:"description,omitempty"`
		Status      string     `json:"status"`
		DueDate     *time.Time `json:"due_date,omitempty"`
		Feedback    string     `json:"feedback,omitempty"`
		ReviewerID  string     `json:"reviewer_id,omitempty"`
		ReviewedAt  *time.Time `json:"reviewed_at,omitempty"` // UTC
		File        *FileInfo  `json:"file,omitempty"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	// FileInfo records the stored file of a Deliverable. Path addresses the
	// file in core.FileStorage; URL is what clients download it from.
	FileInfo struct {
		Path         string    `json:"path"`
		URL          string    `json:"url"`
		OriginalName string    `json:"original_name"`
		ContentType  string    `json:"content_type,omitempty"`
		Size         int64     `json:"size"`
		UploadedBy   string    `json:"uploaded_by,omitempty"`
		UploadedAt   time.Time `json:"uploaded_at"`
	}
)

// IsCompleted reports whether the task counts as done for progress purposes.
// Checklist state is informational and never gates completion.
func (t Task) IsCompleted() bool { return t.Status == TaskCompleted }

// Deliverable returns the embedded deliverable with the given ID.
func (t Task) Deliverable(id string) (Deliverable, bool) {
	for _, dlv := range t.Deliverables {
		if dlv.ID == id {
			return dlv, true
		}
	}
	return Deliverable{}, false
}

// Marshalling and Validation

// NewProject contains the information needed to instantiate a project from
// catalog modules.
type NewProject struct {
	Name          string             `json:"name" validate:"required"`
	Client        string             `json:"client" validate:"required"`
	Description   string             `json:"description"`
	StartDate     time.Time          `json:"start_date" validate:"required"`
	EndDate       time.Time          `json:"end_date" validate:"required,gtefield=StartDate"`
	BillingMode   string             `json:"billing_mode" validate:"omitempty,oneof=per_module fixed"`
	TotalCost     float64            `json:"total_cost" validate:"omitempty,gte=0"`
	EnrollmentFee float64            `json:"enrollment_fee" validate:"omitempty,gte=0"`
	Modules       []string           `json:"modules" validate:"required,min=1,dive,required"`
	ModuleCosts   map[string]float64 `json:"module_costs"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Client = core.CleanString(np.Client)
	np.BillingMode = core.CleanString(np.BillingMode, true /* lower */)
	if np.BillingMode == "" {
		np.BillingMode = BillingPerModule
	}
	for i := range np.Modules {
		np.Modules[i] = core.CleanString(np.Modules[i], true /* lower */)
	}
	return validate.Struct(np)
}

// UpdateProject defines what may be modified on a Project. Changing Modules
// instantiates the added modules' tasks and removes the dropped modules'
// tasks and cost entries in the same write. ModuleCosts entries are merged
// into the stored map; module removal is the only way an entry disappears.
type UpdateProject struct {
	Name          string             `json:"name"`
	Client        string             `json:"client"`
	Description   string             `json:"description"`
	StartDate     *time.Time         `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	Status        string             `json:"status" validate:"omitempty,oneof=active completed on_hold cancelled"`
	BillingMode   string             `json:"billing_mode" validate:"omitempty,oneof=per_module fixed"`
	TotalCost     *float64           `json:"total_cost" validate:"omitempty,gte=0"`
	EnrollmentFee *float64           `json:"enrollment_fee" validate:"omitempty,gte=0"`
	Modules       *[]string          `json:"modules"`
	ModuleCosts   map[string]float64 `json:"module_costs"`
}

func (up *UpdateProject) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Client = core.CleanString(up.Client)
	up.Status = core.CleanString(up.Status, true /* lower */)
	up.BillingMode = core.CleanString(up.BillingMode, true /* lower */)
	if up.Modules != nil {
		for i := range *up.Modules {
			(*up.Modules)[i] = core.CleanString((*up.Modules)[i], true /* lower */)
		}
	}
	return validate.Struct(up)
}

// NewTask adds a manual task to a project, outside template expansion.
// Checklist and Deliverables carry display names that become live records.
type NewTask struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	ModuleID     string     `json:"module_id"`
	DueDate      *time.Time `json:"due_date"`
	Department   string     `json:"department"`
	AssigneeID   string     `json:"assignee_id"`
	Checklist    []string   `json:"checklist" validate:"omitempty,dive,required"`
	Deliverables []string   `json:"deliverables" validate:"omitempty,dive,required"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.ModuleID = core.CleanString(nt.ModuleID, true /* lower */)
	nt.Department = core.CleanString(nt.Department, true /* lower */)
	for i := range nt.Checklist {
		nt.Checklist[i] = core.CleanString(nt.Checklist[i])
	}
	for i := range nt.Deliverables {
		nt.Deliverables[i] = core.CleanString(nt.Deliverables[i])
	}
	return validate.Struct(nt)
}

// UpdateTask defines what may be modified on a Task. A nil AssigneeID keeps
// the current assignee; a pointer to "" clears it.
type UpdateTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"due_date"`
	Department  string     `json:"department"`
	AssigneeID  *string    `json:"assignee_id"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	ut.Department = core.CleanString(ut.Department, true /* lower */)
	return validate.Struct(ut)
}

type NewChecklistItem struct {
	Text string `json:"text" validate:"required"`
}

func (ni *NewChecklistItem) Validate(validate *validator.Validate) error {
	ni.Text = core.CleanString(ni.Text)
	return validate.Struct(ni)
}

type NewDeliverable struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (nd *NewDeliverable) Validate(validate *validator.Validate) error {
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

type UpdateDeliverable struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (ud *UpdateDeliverable) Validate(validate *validator.Validate) error {
	ud.Name = core.CleanString(ud.Name)
	return validate.Struct(ud)
}

// ReviewInput records a reviewer verdict. Approved and rejected are the
// meaningful verdicts; pending and in_review act as an explicit reset.
type ReviewInput struct {
	Status   string `json:"status" validate:"required,oneof=pending in_review approved rejected"`
	Feedback string `json:"feedback"`
}

func (rv *ReviewInput) Validate(validate *validator.Validate) error {
	rv.Status = core.CleanString(rv.Status, true /* lower */)
	rv.Feedback = core.CleanString(rv.Feedback)
	return validate.Struct(rv)
}

// FileUpload is an incoming deliverable file.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// QueryFilter defines the supported project query parameters.
type QueryFilter struct {
	Search      string    `query:"search"` // name / client / description
	Status      string    `query:"status"`
	Client      string    `query:"client"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (f QueryFilter) IsEmpty() bool {
	return f == QueryFilter{}
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search, true /* lower */)
	f.Status = core.CleanString(f.Status, true /* lower */)
	f.Client = core.CleanString(f.Client, true /* lower */)
}

// TaskFilter defines the supported task query parameters.
type TaskFilter struct {
	ProjectID  string    `query:"project_id"`
	ModuleID   string    `query:"module_id"`
	Status     string    `query:"status"`
	Department string    `query:"department"`
	AssigneeID string    `query:"assignee_id"`
	Search     string    `query:"search"` // title / description
	DueFrom    time.Time `query:"due_from"`
	DueTo      time.Time `query:"due_to"`
}

func (f TaskFilter) IsEmpty() bool {
	return f == TaskFilter{}
}

func (f *TaskFilter) Clean() {
	f.ModuleID = core.CleanString(f.ModuleID, true /* lower */)
	f.Status = core.CleanString(f.Status, true /* lower */)
	f.Department = core.CleanString(f.Department, true /* lower */)
	f.Search = core.CleanString(f.Search, true /* lower */)
}
