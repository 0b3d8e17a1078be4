package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) all() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.all() {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, scope auth.Filter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.all() {
		if !admits(scope, str(usr.SchoolID), str(usr.ID), str(usr.ClassName), nil) {
			continue
		}
		if filter != nil && !matchUserFilter(usr, filter) {
			continue
		}
		users = append(users, usr)
	}
	orderUsers(users, ordering)
	return users, nil
}

func matchUserFilter(usr user.User, filter *user.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(usr.Name), s) &&
			!strings.Contains(strings.ToLower(usr.Username), s) &&
			!strings.Contains(strings.ToLower(usr.Email), s) {
			return false
		}
	}
	if filter.Role != "" && string(usr.Role) != filter.Role {
		return false
	}
	if filter.ClassName != "" && usr.ClassName != filter.ClassName {
		return false
	}
	if filter.IsActive != nil && usr.Active() != *filter.IsActive {
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

func orderUsers(users []user.User, ordering []core.DBOrdering) {
	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		sort.SliceStable(users, func(a, b int) bool {
			var less bool
			switch ord.Field {
			case "name":
				less = users[a].Name < users[b].Name
			case "username":
				less = users[a].Username < users[b].Username
			case "created_at":
				less = users[a].CreatedAt.Before(users[b].CreatedAt)
			case "is_active":
				less = !users[a].Active() && users[b].Active()
			default:
				less = users[a].ID < users[b].ID
			}
			if ord.Desc {
				return !less
			}
			return less
		})
	}
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.all() {
		switch {
		case filter.Username != "" && usr.Username == filter.Username:
			return usr, nil
		case filter.Email != "" && usr.Email == filter.Email:
			return usr, nil
		case filter.UsernameOrEmail != nil:
			for _, v := range filter.UsernameOrEmail {
				if v != "" && (usr.Username == v || usr.Email == v) {
					return usr, nil
				}
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.users[id]; ok {
			delete(repo.db.users, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *userRepository) CountUsersBySchool(ctx context.Context, schoolID string, role auth.Role) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var cnt int
	for _, usr := range repo.db.users {
		if usr.SchoolID == schoolID && usr.Role == role {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *userRepository) TeacherAssignment(ctx context.Context, teacherID string) (auth.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	usr, ok := repo.db.users[teacherID]
	if !ok {
		return auth.Assignment{}, user.ErrNotFound
	}
	return auth.Assignment{Classes: usr.AssignedClasses, Subjects: usr.AssignedSubjects}, nil
}
