package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) execer {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(execer); ok {
			return ext
		}
	}
	return repo.db
}

// userDoc re-exposes the password hash the API serializer hides.
type userDoc struct {
	user.User
	PasswordHash []byte `json:"password_hash,omitempty"`
}

func marshalUser(usr user.User) ([]byte, error) {
	doc, err := json.Marshal(userDoc{User: usr, PasswordHash: usr.PasswordHash})
	return doc, errors.Wrap(err, "marshalling user")
}

func unmarshalUser(doc []byte) (user.User, error) {
	var d userDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return user.User{}, errors.Wrap(err, "unmarshalling user")
	}
	usr := d.User
	usr.PasswordHash = d.PasswordHash
	return usr, nil
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapUserNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)

	q := "SELECT EXISTS (SELECT 1 FROM users WHERE email = ?"
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		inQ, inArgs, err := sqlx.In("id NOT IN (?)", ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		q += " AND " + inQ
		args = append(args, inArgs...)
	}
	q += ")"

	var exists bool
	if err := ext.QueryRowxContext(ctx, ext.Rebind(q), args...).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	ext := repo.getExec(exec)
	usr.ID = uuid.New().String()
	doc, err := marshalUser(usr)
	if err != nil {
		return user.User{}, err
	}
	q := ext.Rebind("INSERT INTO users (id, email, department, is_active, doc) VALUES (?, ?, ?, ?, ?)")
	if _, err = ext.ExecContext(ctx, q, usr.ID, usr.Email, usr.Department, usr.IsActive, doc); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	ext := repo.getExec(exec)

	var conds []string
	var args []interface{}
	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			conds = append(conds, "(lower(doc->>'name') LIKE ? OR email LIKE ?)")
			needle := "%" + strings.ToLower(filter.Search) + "%"
			args = append(args, needle, needle)
		}
		if filter.Role != "" {
			conds = append(conds, "doc->>'role' = ?")
			args = append(args, filter.Role)
		}
		if filter.Department != "" {
			conds = append(conds, "department = ?")
			args = append(args, filter.Department)
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = ?")
			args = append(args, *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "(doc->>'created_at')::timestamptz >= ?")
			args = append(args, filter.CreatedFrom)
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "(doc->>'created_at')::timestamptz <= ?")
			args = append(args, filter.CreatedTo)
		}
	}

	q := "SELECT doc FROM users" + where(conds) + docOrderBy(ordering)
	rows, err := ext.QueryxContext(ctx, ext.Rebind(q), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning user")
		}
		usr, err := unmarshalUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, errors.Wrap(rows.Err(), "querying users")
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	ext := repo.getExec(exec)

	var q string
	var arg interface{}
	switch {
	case filter.ID != "":
		q, arg = "SELECT doc FROM users WHERE id = ?", filter.ID
	case filter.Email != "":
		q, arg = "SELECT doc FROM users WHERE email = ?", filter.Email
	default:
		return user.User{}, user.ErrNotFound
	}

	var doc []byte
	if err := ext.QueryRowxContext(ctx, ext.Rebind(q), arg).Scan(&doc); err != nil {
		return user.User{}, trapUserNoRowsErr(err, "getting user")
	}
	return unmarshalUser(doc)
}

// UpdateUser only saves set fields.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	ext := repo.getExec(exec)

	orig, err := repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
	if err != nil {
		return user.User{}, err
	}
	if usr.Name != "" {
		orig.Name = usr.Name
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if usr.Role != "" {
		orig.Role = usr.Role
	}
	if usr.Department != "" {
		orig.Department = usr.Department
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	if !usr.UpdatedAt.IsZero() {
		orig.UpdatedAt = usr.UpdatedAt
	}
	if !usr.LastLogin.IsZero() {
		orig.LastLogin = usr.LastLogin
	}

	doc, err := marshalUser(orig)
	if err != nil {
		return user.User{}, err
	}
	q := ext.Rebind("UPDATE users SET email = ?, department = ?, is_active = ?, doc = ? WHERE id = ?")
	if _, err = ext.ExecContext(ctx, q, orig.Email, orig.Department, orig.IsActive, doc, orig.ID); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return orig, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		existing, err := repo.GetUser(ctx, user.GetFilter{Email: usr.Email}, exec...)
		if err != nil {
			if errors.Cause(err) != user.ErrNotFound {
				return user.User{}, err
			}
			return repo.CreateUser(ctx, usr, exec...)
		}
		usr.ID = existing.ID
	}
	isActive := usr.IsActive
	return repo.UpdateUser(ctx, usr, &isActive, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ext := repo.getExec(exec)

	q, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := ext.ExecContext(ctx, ext.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo userRepository) CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	ext := repo.getExec(exec)
	var count int
	err := ext.QueryRowxContext(ctx, "SELECT count(*) FROM users").Scan(&count)
	return count, errors.Wrap(err, "counting users")
}

// Departments

func (repo userRepository) CreateDepartment(ctx context.Context, dept user.Department, exec ...core.DBExecutor) (user.Department, error) {
	ext := repo.getExec(exec)
	doc, err := json.Marshal(dept)
	if err != nil {
		return user.Department{}, errors.Wrap(err, "marshalling department")
	}
	q := ext.Rebind("INSERT INTO departments (id, doc) VALUES (?, ?)")
	if _, err = ext.ExecContext(ctx, q, dept.ID, doc); err != nil {
		return user.Department{}, errors.Wrap(err, "inserting department")
	}
	return dept, nil
}

func (repo userRepository) GetDepartment(ctx context.Context, id string, exec ...core.DBExecutor) (user.Department, error) {
	ext := repo.getExec(exec)
	var doc []byte
	if err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT doc FROM departments WHERE id = ?"), id).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return user.Department{}, user.ErrDepartmentNotFound
		}
		return user.Department{}, errors.Wrap(err, "getting department")
	}
	var dept user.Department
	err := json.Unmarshal(doc, &dept)
	return dept, errors.Wrap(err, "unmarshalling department")
}

func (repo userRepository) QueryDepartments(ctx context.Context, exec ...core.DBExecutor) ([]user.Department, error) {
	ext := repo.getExec(exec)
	rows, err := ext.QueryxContext(ctx, "SELECT doc FROM departments ORDER BY doc->>'name'")
	if err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer rows.Close()

	var depts []user.Department
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning department")
		}
		var dept user.Department
		if err = json.Unmarshal(doc, &dept); err != nil {
			return nil, errors.Wrap(err, "unmarshalling department")
		}
		depts = append(depts, dept)
	}
	return depts, errors.Wrap(rows.Err(), "querying departments")
}

func (repo userRepository) UpdateDepartment(ctx context.Context, dept user.Department, exec ...core.DBExecutor) (user.Department, error) {
	ext := repo.getExec(exec)
	doc, err := json.Marshal(dept)
	if err != nil {
		return user.Department{}, errors.Wrap(err, "marshalling department")
	}
	res, err := ext.ExecContext(ctx, ext.Rebind("UPDATE departments SET doc = ? WHERE id = ?"), doc, dept.ID)
	if err != nil {
		return user.Department{}, errors.Wrap(err, "updating department")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.Department{}, user.ErrDepartmentNotFound
	}
	return dept, nil
}

func (repo userRepository) DeleteDepartment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	ext := repo.getExec(exec)
	_, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM departments WHERE id = ?"), id)
	return errors.Wrap(err, "deleting department")
}

func (repo userRepository) CountDepartmentUsers(ctx context.Context, id string, exec ...core.DBExecutor) (int, error) {
	ext := repo.getExec(exec)
	var count int
	err := ext.QueryRowxContext(ctx, ext.Rebind("SELECT count(*) FROM users WHERE department = ?"), id).Scan(&count)
	return count, errors.Wrap(err, "counting department users")
}
