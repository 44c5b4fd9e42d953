package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/elearn360/backend/core"
)

// Roles. The set is closed; departments are the extensible axis.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleCollaborator   = "collaborator"
)

var (
	AllRoles      = []string{RoleCollaborator, RoleProjectManager, RoleAdmin}
	ReviewerRoles = []string{RoleProjectManager, RoleAdmin}

	rolePriorities = map[string]int{
		RoleAdmin:          3,
		RoleProjectManager: 2,
		RoleCollaborator:   1,
	}

	Roles = []Role{
		{Value: RoleCollaborator, Name: "Colaborador", Description: "Visualización y actualización de tareas asignadas"},
		{Value: RoleProjectManager, Name: "Project Manager", Description: "Gestión de proyectos y tareas"},
		{Value: RoleAdmin, Name: "Administrador", Description: "Control total del sistema"},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type Role struct {
	Value       string `json:"value"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Department is a lookup record users and catalog task templates refer to
// by ID. The defaults below are installed by Service.EnsureDefaultDepartments.
type Department struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var DefaultDepartments = []Department{
	{ID: "comercial", Name: "Comercial", Color: "emerald"},
	{ID: "marketing", Name: "Marketing", Color: "purple"},
	{ID: "administracion", Name: "Administración", Color: "slate"},
	{ID: "creativo", Name: "Creativo", Color: "pink"},
	{ID: "contenido", Name: "Contenido", Color: "amber"},
	{ID: "academico", Name: "Académico", Color: "cyan"},
	{ID: "desarrollo", Name: "Desarrollo", Color: "blue"},
	{ID: "direccion", Name: "Dirección", Color: "red"},
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsReviewer reports whether the user may review deliverables and manage projects.
func (u *User) IsReviewer() bool {
	return u.Role == RoleAdmin || u.Role == RoleProjectManager
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,role"`
	Department      string `json:"department"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Department = core.CleanString(nu.Department, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	Department      string `json:"department"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	uu.Department = core.CleanString(uu.Department, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// NewDepartment contains information needed to create a Department.
type NewDepartment struct {
	ID    string `json:"id" validate:"omitempty,slug"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.ID = core.CleanString(nd.ID, true /* lower */)
	nd.Name = core.CleanString(nd.Name)
	nd.Color = core.CleanString(nd.Color, true /* lower */)
	return validate.Struct(nd)
}

// UpdateDepartment defines what may be modified on an existing Department.
type UpdateDepartment struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (ud *UpdateDepartment) Validate(validate *validator.Validate) error {
	ud.Name = core.CleanString(ud.Name)
	ud.Color = core.CleanString(ud.Color, true /* lower */)
	return validate.Struct(ud)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	Department  string    `query:"department"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.Department == "" &&
		qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.Department = core.CleanString(qf.Department, true /* lower */)
}
