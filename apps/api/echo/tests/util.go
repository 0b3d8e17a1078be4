package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/sharath2004/edubridge/apps/api/echo"
	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/ai"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
	"github.com/sharath2004/edubridge/core/course"
	"github.com/sharath2004/edubridge/core/school"
	"github.com/sharath2004/edubridge/core/user"
	aisvc "github.com/sharath2004/edubridge/services/ai"
	emailsvc "github.com/sharath2004/edubridge/services/email"
	inmemdb "github.com/sharath2004/edubridge/storage/database/inmem"
)

var (
	usrRepo user.Repository
	schRepo school.Repository
	clsRepo class.Repository
	acaRepo academic.Repository
	crsRepo course.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: auth.ErrRoleNotPermitted.Error()}
	errBadScope     = httpErr{Error: auth.ErrForbiddenScope.Error()}
)

func setup(t *testing.T) Server {
	t.Helper()

	core.Conf.Debug = false
	core.Conf.TestMode = true

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	schRepo = inmemdb.NewSchoolRepository(db)
	clsRepo = inmemdb.NewClassRepository(db)
	acaRepo = inmemdb.NewAcademicRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)

	// set up services
	logger := newTestLogger()
	mailSvc := emailsvc.NewConsoleServiceMock()
	schSvc := school.NewService(schRepo, usrRepo, mailSvc)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, schSvc)
	clsSvc := class.NewService(clsRepo, usrRepo)
	acaSvc := academic.NewService(acaRepo)
	crsSvc := course.NewService(crsRepo)
	aiSvc := ai.NewService(aisvc.NewDummyAssistant(false), logger)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,

			Gate:         auth.NewGate(usrRepo),
			UserSvc:      usrSvc,
			SchoolSvc:    schSvc,
			ClassSvc:     clsSvc,
			AcademicSvc:  acaSvc,
			CourseSvc:    crsSvc,
			AssistantSvc: aiSvc,
		},
		nil, /* shutdown */
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testLogger satisfies core.Logger without polluting test output.
type testLogger struct {
	std *log.Logger
}

func newTestLogger() *testLogger {
	return &testLogger{std: log.New(io.Discard, "", 0)}
}

func (l *testLogger) Enable(bool) {}

func (l *testLogger) Debug(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l *testLogger) Info(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l *testLogger) Warn(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l *testLogger) Error(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l *testLogger) Fatal(msg string, args ...interface{}) { l.std.Println(msg, args) }

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
	if l1, ok := j1.([]interface{}); ok {
		if l2, ok := j2.([]interface{}); ok {
			return assert.ElementsMatch(t, l1, l2), nil
		}
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
