// Package inmemdb implements the domain repositories on in-process maps.
// It mirrors the Postgres repositories' behavior and backs development and
// the API test suite.
package inmemdb

import (
	"sync"

	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/notif"
	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
)

type (
	DB struct {
		users     *userTable
		catalogs  *catalogTable
		projects  *projectTable
		notifs    *notifTable
	}

	userTable struct {
		sync.RWMutex
		users map[string]*user.User
		depts map[string]*user.Department
	}

	catalogTable struct {
		sync.RWMutex
		versions []catalog.Catalog
	}

	projectTable struct {
		sync.RWMutex
		projects map[string]*project.Project
		tasks    map[string]*project.Task
		seq      int // insertion order tiebreaker for equal timestamps
		order    map[string]int
	}

	notifTable struct {
		sync.RWMutex
		notifs map[string]*notif.Notification
		seq    int
		order  map[string]int
	}
)

func Open() *DB {
	return &DB{
		users: &userTable{
			users: make(map[string]*user.User),
			depts: make(map[string]*user.Department),
		},
		catalogs: &catalogTable{},
		projects: &projectTable{
			projects: make(map[string]*project.Project),
			tasks:    make(map[string]*project.Task),
			order:    make(map[string]int),
		},
		notifs: &notifTable{
			notifs: make(map[string]*notif.Notification),
			order:  make(map[string]int),
		},
	}
}
