package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username string, excludedIDs ...int) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclLen := len(excludedIDs)
	if exclLen > 1 {
		sort.Ints(excludedIDs)
	}
	for _, usr := range repo.db.tables.users {
		if usr.Username == username && !isExcluded(usr.ID, excludedIDs, exclLen) {
			return user.ErrUsernameExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	defer repo.db.lockWrite(false)()

	for _, u := range repo.db.tables.users {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	usr.ID = repo.db.nextID("users")
	repo.db.tables.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.tables.users[filter.ID]; ok && (filter.Username == "" || usr.Username == filter.Username) {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, usr := range repo.db.tables.users {
			if usr.Username == filter.Username {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsersByID(_ context.Context, ids ...int) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	users := make([]user.User, 0, len(wanted))
	for _, id := range sortedKeys(repo.db.tables.users) {
		if _, ok := wanted[id]; ok {
			users = append(users, repo.db.tables.users[id])
		}
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	defer repo.db.lockWrite(false)()

	orig, ok := repo.db.tables.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	// username, role & creation time are immutable
	usr.Username = orig.Username
	usr.Role = orig.Role
	usr.CreatedAt = orig.CreatedAt
	if usr.PasswordHash == nil {
		usr.PasswordHash = orig.PasswordHash
	}
	repo.db.tables.users[usr.ID] = usr
	return usr, nil
}

func isExcluded(id int, excludedIDs []int, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.SearchInts(excludedIDs, id)
	return idx < n && excludedIDs[idx] == id
}
