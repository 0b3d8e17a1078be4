package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
	"github.com/sharath2004/edubridge/core/user"
	testutil "github.com/sharath2004/edubridge/tests"
)

func Test_classApi_create(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch.ID, true)
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")
	testutil.CreateClass(t, clsRepo, sch.ID, "10-B")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "students may not create classes", token: getToken(t, stu),
			body:     marchallObj(t, map[string]string{"class_name": "11-A"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "name is required", token: getToken(t, admin), body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"class_name": "this field is required"}),
		},
		{
			name: "duplicate name in the school is rejected", token: getToken(t, admin),
			body:     marchallObj(t, map[string]string{"class_name": "10-B"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class_name": class.ErrClassExists.Error()}),
		},
		{
			name: "admin creates a class", token: getToken(t, admin),
			body:     marchallObj(t, map[string]string{"class_name": "11-A", "section": "Science"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/classes"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var cls class.Class
				if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if cls.SchoolID != sch.ID {
					t.Errorf("SchoolID = %v; want %v", cls.SchoolID, sch.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classApi_assignTeacher(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch.ID, true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, nil, nil)
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")
	cls := testutil.CreateClass(t, clsRepo, sch.ID, "10-A")

	path := "/v1/classes/" + cls.ID + "/assign-teacher"

	// only a teacher of the same school qualifies
	body := marchallObj(t, map[string]string{"teacher_id": stu.ID})
	req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		name: "not a teacher", wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"teacher_id": user.ErrNotATeacher.Error()}),
	}, rec)

	// assignment sets the owner and extends the teacher's classes
	body = marchallObj(t, map[string]string{"teacher_id": teacher.ID})
	req, rec = newAuthRequest(http.MethodPost, path, getToken(t, admin), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var assigned class.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if assigned.ClassTeacherID != teacher.ID {
		t.Errorf("ClassTeacherID = %v; want %v", assigned.ClassTeacherID, teacher.ID)
	}

	// the teacher's scope now admits the class
	req, rec = newAuthRequest(http.MethodGet, "/v1/classes", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		name: "teacher sees the class", wantCode: http.StatusOK,
		wantData: marchallList(t, assigned),
	}, rec)
}
