package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/user"
	inmemdb "github.com/elearn360/backend/storage/database/inmem"
	testutil "github.com/elearn360/backend/tests"
)

var usrRepo user.Repository

type deptStoreStub struct{}

func (deptStoreStub) DepartmentExists(string) (bool, error) { return true, nil }

func setup(t *testing.T) *commandLine {
	t.Helper()

	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)

	return &commandLine{
		usrRepo: usrRepo,
		catSvc:  catalog.NewService(inmemdb.NewCatalogRepository(db), deptStoreStub{}),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var lastCmd string
	migrateUpFunc = func(db *sql.DB) error {
		lastCmd = "up"
		return nil
	}
	migrateDownFunc = func(db *sql.DB) error {
		lastCmd = "down"
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}, extra: "up"},
		{name: "down", args: []string{"migrate", "down"}, extra: "down"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			lastCmd = ""
			err := cli.run(args)
			if err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
				return
			}
			if want, ok := tt.extra.(string); ok && lastCmd != want {
				t.Errorf("cli.run() ran %q, want %q", lastCmd, want)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"adduser", "-name", "Awe"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "create collaborator", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, extra: extra{pwd: "mdr"}},
		{name: "create admin", args: []string{"adduser", "-name", "Boss", "-email", "boss@test.cd", "-admin"}, extra: extra{pwd: "mdr"}},
		{name: "update existing", args: []string{"adduser", "-name", "Awe II", "-email", "awe@test.cd", "-role", "project_manager"}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			var email string
			for i, arg := range tt.args {
				if arg == "-email" {
					email = tt.args[i+1]
				}
			}
			usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: email})
			if err != nil {
				t.Fatalf("GetUser() failed, %v", err)
			}
			if !usr.IsActive {
				t.Error("addUser() left user inactive")
			}
			if usr.PasswordHash == nil {
				t.Error("addUser() did not set a password")
			}
		})
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "boss@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if usr.Role != user.RoleAdmin {
		t.Errorf("addUser(-admin) role = %q, want %q", usr.Role, user.RoleAdmin)
	}

	usr, err = usrRepo.GetUser(context.Background(), user.GetFilter{Email: "awe@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if usr.Role != user.RoleProjectManager {
		t.Errorf("addUser(-role) role = %q, want %q", usr.Role, user.RoleProjectManager)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "mdr", "", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_seedCatalog(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seedcatalog"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}

	cat, err := cli.catSvc.Current()
	if err != nil {
		t.Fatalf("Current() failed, %v", err)
	}
	if len(cat.Modules) == 0 {
		t.Error("seedCatalog() published an empty catalog")
	}
	if cat.Version != 1 {
		t.Errorf("seedCatalog() version = %d, want 1", cat.Version)
	}

	// seeding twice keeps the same version
	if err := cli.run([]string{"admin", "seedcatalog"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	again, err := cli.catSvc.Current()
	if err != nil {
		t.Fatalf("Current() failed, %v", err)
	}
	if again.Version != cat.Version {
		t.Errorf("seedCatalog() re-seeded: version = %d, want %d", again.Version, cat.Version)
	}
}
