package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded[usr.ID] = true
	}
	for _, usr := range repo.query() {
		if usr.Email == email && !excluded[usr.ID] {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var users []user.User
	for _, usr := range repo.query() {
		if matchUser(usr, filter) {
			users = append(users, usr)
		}
	}
	sortUsers(users, ordering)
	return users, nil
}

func matchUser(usr user.User, filter *user.QueryFilter) bool {
	if filter == nil || filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(usr.Name), needle) &&
			!strings.Contains(strings.ToLower(usr.Email), needle) {
			return false
		}
	}
	if filter.Role != "" && usr.Role != filter.Role {
		return false
	}
	if filter.Department != "" && usr.Department != filter.Department {
		return false
	}
	if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
		return false
	}
	if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func sortUsers(users []user.User, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	ord := ordering[0]
	sort.SliceStable(users, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "name":
			less = users[i].Name < users[j].Name
		case "email":
			less = users[i].Email < users[j].Email
		default: // created_at
			less = users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		if ord.Ascending {
			return less
		}
		return !less
	})
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Email != "" {
		for _, usr := range repo.db.users {
			if usr.Email == filter.Email {
				return *usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	updated := *orig
	if usr.Name != "" {
		updated.Name = usr.Name
	}
	if usr.Email != "" {
		updated.Email = usr.Email
	}
	if usr.Role != "" {
		updated.Role = usr.Role
	}
	if usr.Department != "" {
		updated.Department = usr.Department
	}
	if usr.PasswordHash != nil {
		updated.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		updated.IsActive = *isActive
	}
	if !usr.UpdatedAt.IsZero() {
		updated.UpdatedAt = usr.UpdatedAt
	}
	if !usr.LastLogin.IsZero() {
		updated.LastLogin = usr.LastLogin
	}
	repo.db.users[usr.ID] = &updated
	return updated, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		existing, err := repo.GetUser(ctx, user.GetFilter{Email: usr.Email})
		if err != nil {
			if err != user.ErrNotFound {
				return user.User{}, err
			}
			return repo.CreateUser(ctx, usr)
		}
		usr.ID = existing.ID
	}
	isActive := usr.IsActive
	return repo.UpdateUser(ctx, usr, &isActive)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var deleted int
	for _, id := range ids {
		if _, ok := repo.db.users[id]; ok {
			delete(repo.db.users, id)
			deleted++
		}
	}
	return deleted, nil
}

func (repo *userRepository) CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.users), nil
}

// Departments

func (repo *userRepository) CreateDepartment(ctx context.Context, dept user.Department, exec ...core.DBExecutor) (user.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.depts[dept.ID] = &dept
	return dept, nil
}

func (repo *userRepository) GetDepartment(ctx context.Context, id string, exec ...core.DBExecutor) (user.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if dept, ok := repo.db.depts[id]; ok {
		return *dept, nil
	}
	return user.Department{}, user.ErrDepartmentNotFound
}

func (repo *userRepository) QueryDepartments(ctx context.Context, exec ...core.DBExecutor) ([]user.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := make([]user.Department, 0, len(repo.db.depts))
	for _, dept := range repo.db.depts {
		depts = append(depts, *dept)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].Name < depts[j].Name })
	return depts, nil
}

func (repo *userRepository) UpdateDepartment(ctx context.Context, dept user.Department, exec ...core.DBExecutor) (user.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.depts[dept.ID]; !ok {
		return user.Department{}, user.ErrDepartmentNotFound
	}
	repo.db.depts[dept.ID] = &dept
	return dept, nil
}

func (repo *userRepository) DeleteDepartment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.depts, id)
	return nil
}

func (repo *userRepository) CountDepartmentUsers(ctx context.Context, id string, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, usr := range repo.db.users {
		if usr.Department == id {
			count++
		}
	}
	return count, nil
}
