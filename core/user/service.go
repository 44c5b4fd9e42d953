package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentExists   = errors.New("a department with this id already exists")
	ErrDepartmentInUse    = errors.New("department is still assigned to users or task templates")
)

type (
	// GetFilter selects a single user by ID or email.
	GetFilter struct {
		ID    string
		Email string
	}

	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on User.Name or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		// UpdateUser only saves set fields.
		UpdateUser(ctx context.Context, usr User, isActive *bool, exec ...core.DBExecutor) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error)

		CreateDepartment(ctx context.Context, dept Department, exec ...core.DBExecutor) (Department, error)
		GetDepartment(ctx context.Context, id string, exec ...core.DBExecutor) (Department, error)
		QueryDepartments(ctx context.Context, exec ...core.DBExecutor) ([]Department, error)
		UpdateDepartment(ctx context.Context, dept Department, exec ...core.DBExecutor) (Department, error)
		DeleteDepartment(ctx context.Context, id string, exec ...core.DBExecutor) error
		CountDepartmentUsers(ctx context.Context, id string, exec ...core.DBExecutor) (int, error)
	}

	// DepartmentRefFunc reports whether a department is still referenced
	// outside this package (catalog task templates).
	DepartmentRefFunc func(id string) (bool, error)

	Service interface {
		Register(nu NewUser) (User, error)
		Create(nu NewUser) (User, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		Update(id string, uu UpdateUser) (User, error)
		Delete(ids ...string) error
		SetLastLogin(usr User) (User, error)
		CheckUniqueness(email string, excludedUsers ...User) error
		Count() (int, error)

		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) error

		QueryRoles() []Role
		QueryDepartments() ([]Department, error)
		GetDepartment(id string) (Department, error)
		DepartmentExists(id string) (bool, error)
		CreateDepartment(nd NewDepartment) (Department, error)
		UpdateDepartment(id string, ud UpdateDepartment) (Department, error)
		DeleteDepartment(id string) error
		EnsureDefaultDepartments() error
		SetDepartmentRefCheck(fn DepartmentRefFunc)
	}

	service struct {
		repo      Repository
		mailSvc   core.EmailService
		conf      *core.Config
		deptRefFn DepartmentRefFunc
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckUniqueness(email string, excludedUsers ...User) error {
	email = core.CleanString(email, true /* lower */)
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excludedUsers); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) checkDepartment(id string) error {
	if id == "" {
		return nil
	}
	ok, err := svc.DepartmentExists(id)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(
			ErrDepartmentNotFound,
			core.FieldError{Field: "department", Error: ErrDepartmentNotFound.Error()},
		)
	}
	return nil
}

// Register creates a self-service account. The very first account becomes
// an admin; subsequent ones start as collaborators until an admin promotes
// them.
func (svc *service) Register(nu NewUser) (User, error) {
	count, err := svc.repo.CountUsers(context.Background())
	if err != nil {
		return User{}, errors.Wrap(err, "counting users")
	}
	if count == 0 {
		nu.Role = RoleAdmin
	} else {
		nu.Role = RoleCollaborator
	}
	return svc.Create(nu)
}

func (svc *service) Create(nu NewUser) (User, error) {
	if err := svc.checkDepartment(nu.Department); err != nil {
		return User{}, err
	}
	if nu.Role == "" {
		nu.Role = RoleCollaborator
	}

	now := time.Now().UTC()
	usr := User{
		Name:       nu.Name,
		Email:      nu.Email,
		Role:       nu.Role,
		Department: nu.Department,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(context.Background(), usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(context.Background(), filter, ordering)
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUser(context.Background(), GetFilter{ID: id})
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUser(context.Background(), GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Update(id string, uu UpdateUser) (User, error) {
	if err := svc.checkDepartment(uu.Department); err != nil {
		return User{}, err
	}

	usr := User{
		ID:         id,
		Name:       uu.Name,
		Email:      uu.Email,
		Role:       uu.Role,
		Department: uu.Department,
		UpdatedAt:  time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(context.Background(), usr, uu.IsActive)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(context.Background(), ids)
	return err
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(context.Background(), usr, nil)
}

func (svc *service) Count() (int, error) {
	return svc.repo.CountUsers(context.Background())
}

// Password reset

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByID(uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(context.Background(), usr, nil)
	return err
}

// Roles & departments

func (svc *service) QueryRoles() []Role {
	return Roles
}

func (svc *service) QueryDepartments() ([]Department, error) {
	return svc.repo.QueryDepartments(context.Background())
}

func (svc *service) GetDepartment(id string) (Department, error) {
	return svc.repo.GetDepartment(context.Background(), id)
}

func (svc *service) DepartmentExists(id string) (bool, error) {
	if _, err := svc.repo.GetDepartment(context.Background(), id); err != nil {
		if errors.Cause(err) == ErrDepartmentNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *service) CreateDepartment(nd NewDepartment) (Department, error) {
	ctx := context.Background()

	if nd.ID == "" {
		nd.ID = core.Slugify(nd.Name)
	}
	if _, err := svc.repo.GetDepartment(ctx, nd.ID); err == nil {
		return Department{}, core.NewValidationError(
			ErrDepartmentExists,
			core.FieldError{Field: "id", Error: ErrDepartmentExists.Error()},
		)
	} else if errors.Cause(err) != ErrDepartmentNotFound {
		return Department{}, err
	}
	return svc.repo.CreateDepartment(ctx, Department{ID: nd.ID, Name: nd.Name, Color: nd.Color})
}

func (svc *service) UpdateDepartment(id string, ud UpdateDepartment) (Department, error) {
	ctx := context.Background()

	dept, err := svc.repo.GetDepartment(ctx, id)
	if err != nil {
		return Department{}, err
	}
	if ud.Name != "" {
		dept.Name = ud.Name
	}
	if ud.Color != "" {
		dept.Color = ud.Color
	}
	return svc.repo.UpdateDepartment(ctx, dept)
}

func (svc *service) DeleteDepartment(id string) error {
	ctx := context.Background()

	if _, err := svc.repo.GetDepartment(ctx, id); err != nil {
		return err
	}
	count, err := svc.repo.CountDepartmentUsers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDepartmentInUse
	}
	if svc.deptRefFn != nil {
		used, err := svc.deptRefFn(id)
		if err != nil {
			return err
		}
		if used {
			return ErrDepartmentInUse
		}
	}
	return svc.repo.DeleteDepartment(ctx, id)
}

// EnsureDefaultDepartments installs the seed departments that do not exist yet.
func (svc *service) EnsureDefaultDepartments() error {
	ctx := context.Background()

	for _, dept := range DefaultDepartments {
		if _, err := svc.repo.GetDepartment(ctx, dept.ID); err == nil {
			continue
		} else if errors.Cause(err) != ErrDepartmentNotFound {
			return err
		}
		if _, err := svc.repo.CreateDepartment(ctx, dept); err != nil {
			return err
		}
	}
	return nil
}

func (svc *service) SetDepartmentRefCheck(fn DepartmentRefFunc) {
	svc.deptRefFn = fn
}

// Mails

func (svc *service) sendWelcomeMail(usr User) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("Welcome to %s", svc.conf.AppName),
		TemplateName: "welcome",
		TemplateData: struct{ Name, AppName string }{usr.Name, svc.conf.AppName},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr)
	if err != nil {
		return
	}
	resetURL := fmt.Sprintf(
		"%s/password-reset/confirm?uid=%s&token=%s",
		svc.conf.FrontendBaseURL, EncodeUID(usr), token,
	)
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct{ Name, ResetURL string }{usr.Name, resetURL},
	}
	svc.mailSvc.SendMessages(msg)
}
