package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/elearn360/backend/apps/api/echo"
	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/notif"
	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
	emailsvc "github.com/elearn360/backend/services/email"
	"github.com/elearn360/backend/services/filestore"
	"github.com/elearn360/backend/services/report"
	inmemdb "github.com/elearn360/backend/storage/database/inmem"
)

var (
	usrRepo   user.Repository
	notifRepo notif.Repository

	usrSvc   user.Service
	catSvc   catalog.Service
	prjSvc   project.Service
	notifSvc notif.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) *Server {
	t.Helper()

	os.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.UploadsDir = t.TempDir()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	notifRepo = inmemdb.NewNotifRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	storage, err := filestore.NewLocalStorage(conf)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	bus := core.NewSyncBus()

	usrSvc = user.NewServiceMock(usrRepo, mailSvc, conf)
	catSvc = catalog.NewService(inmemdb.NewCatalogRepository(db), usrSvc)
	prjSvc = project.NewService(inmemdb.NewProjectRepository(db), usrSvc, catSvc, storage, bus)
	notifSvc = notif.NewService(notifRepo, usrSvc, mailSvc, core.NopLogger{})

	catSvc.SetModuleRefCheck(prjSvc.ModuleInUse)
	usrSvc.SetDepartmentRefCheck(catSvc.DepartmentInUse)
	bus.Subscribe(notifSvc.HandleEvent)

	if err := usrSvc.EnsureDefaultDepartments(); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     core.NopLogger{},
			UserSvc:    usrSvc,
			CatalogSvc: catSvc,
			ProjectSvc: prjSvc,
			NotifSvc:   notifSvc,
			Reporter:   report.NewPDFRenderer(conf),
			Validate:   validate,
			Translator: translator,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkCode(t *testing.T, wantCode int, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, wantCode, rec.Body.String())
	}
}
