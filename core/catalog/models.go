package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/elearn360/backend/core"
)

type (
	// TaskTemplate is the blueprint a project task is expanded from.
	// Checklist and Deliverables hold display names only; expansion turns
	// them into live records with their own IDs.
	TaskTemplate struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		Description  string   `json:"description,omitempty"`
		Department   string   `json:"department,omitempty"` // department ID
		Checklist    []string `json:"checklist"`
		Deliverables []string `json:"deliverables"`
	}

	ModuleTemplate struct {
		ID          string         `json:"id"`
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		Icon        string         `json:"icon,omitempty"`
		Color       string         `json:"color,omitempty"`
		DefaultCost float64        `json:"default_cost"`
		Tasks       []TaskTemplate `json:"tasks"`
	}

	// Catalog is one published version of the module templates. Writes never
	// modify a stored version; they publish version N+1. Projects stamp the
	// version they were expanded from, so catalog edits cannot leak into
	// existing projects.
	Catalog struct {
		Version   int              `json:"version"`
		Modules   []ModuleTemplate `json:"modules"`
		UpdatedAt time.Time        `json:"updated_at"` // UTC
		UpdatedBy string           `json:"updated_by,omitempty"`
	}
)

// Module returns the module with the given ID.
func (c Catalog) Module(id string) (ModuleTemplate, bool) {
	for _, mod := range c.Modules {
		if mod.ID == id {
			return mod, true
		}
	}
	return ModuleTemplate{}, false
}

// Template returns the task template with the given ID.
func (m ModuleTemplate) Template(id string) (TaskTemplate, bool) {
	for _, tmpl := range m.Tasks {
		if tmpl.ID == id {
			return tmpl, true
		}
	}
	return TaskTemplate{}, false
}

// NewModule contains information needed to add a ModuleTemplate to the
// catalog. ID is derived from Name when omitted.
type NewModule struct {
	ID          string            `json:"id" validate:"omitempty,slug"`
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Color       string            `json:"color"`
	DefaultCost float64           `json:"default_cost" validate:"gte=0"`
	Tasks       []NewTaskTemplate `json:"tasks" validate:"omitempty,dive"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.ID = core.CleanString(nm.ID, true /* lower */)
	nm.Name = core.CleanString(nm.Name)
	nm.Color = core.CleanString(nm.Color, true /* lower */)
	for i := range nm.Tasks {
		nm.Tasks[i].clean()
	}
	return validate.Struct(nm)
}

type NewTaskTemplate struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Department   string   `json:"department"`
	Checklist    []string `json:"checklist" validate:"omitempty,dive,required"`
	Deliverables []string `json:"deliverables" validate:"omitempty,dive,required"`
}

func (nt *NewTaskTemplate) Validate(validate *validator.Validate) error {
	nt.clean()
	return validate.Struct(nt)
}

func (nt *NewTaskTemplate) clean() {
	nt.Title = core.CleanString(nt.Title)
	nt.Department = core.CleanString(nt.Department, true /* lower */)
	for i := range nt.Checklist {
		nt.Checklist[i] = core.CleanString(nt.Checklist[i])
	}
	for i := range nt.Deliverables {
		nt.Deliverables[i] = core.CleanString(nt.Deliverables[i])
	}
}

// UpdateModule defines what may be modified on an existing ModuleTemplate.
// Task templates are edited through their own operations.
type UpdateModule struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	DefaultCost *float64 `json:"default_cost" validate:"omitempty,gte=0"`
}

func (um *UpdateModule) Validate(validate *validator.Validate) error {
	um.Name = core.CleanString(um.Name)
	um.Color = core.CleanString(um.Color, true /* lower */)
	return validate.Struct(um)
}

// UpdateTaskTemplate defines what may be modified on an existing
// TaskTemplate. Nil Checklist/Deliverables keep the stored lists; non-nil
// values replace them wholesale (catalog templates are admin configuration,
// not concurrently edited project state).
type UpdateTaskTemplate struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Department   string    `json:"department"`
	Checklist    *[]string `json:"checklist" validate:"omitempty,dive,required"`
	Deliverables *[]string `json:"deliverables" validate:"omitempty,dive,required"`
}

func (ut *UpdateTaskTemplate) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Department = core.CleanString(ut.Department, true /* lower */)
	if ut.Checklist != nil {
		for i := range *ut.Checklist {
			(*ut.Checklist)[i] = core.CleanString((*ut.Checklist)[i])
		}
	}
	if ut.Deliverables != nil {
		for i := range *ut.Deliverables {
			(*ut.Deliverables)[i] = core.CleanString((*ut.Deliverables)[i])
		}
	}
	return validate.Struct(ut)
}
