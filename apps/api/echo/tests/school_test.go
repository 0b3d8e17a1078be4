package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/sharath2004/edubridge/apps/api/echo"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/school"
	testutil "github.com/sharath2004/edubridge/tests"
)

func Test_schoolApi_registration_flow(t *testing.T) {
	app := setup(t)

	superAdmin := testutil.CreateUser(t, usrRepo, "Root", "root01", "root@test.cd", "", auth.RoleSuperAdmin, "", true)

	// 1. public registration
	body := marchallObj(t, map[string]string{
		"name": "Green Hills", "code": "GHS-001", "address": "12 Hill Rd",
		"principal_name": "Pat Principal", "principal_email": "pat@test.cd",
		"principal_password": "S3cret!pass",
	})
	req, rec := newRequest(http.MethodPost, "/v1/schools/register", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var regResp echoapi.RegisterSchoolResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &regResp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if regResp.School.IsActive {
		t.Error("school must start inactive")
	}

	// 2. duplicate code is rejected
	req, rec = newRequest(http.MethodPost, "/v1/schools/register", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate code: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// 3. the principal cannot sign in before approval
	login := marchallObj(t, map[string]string{"username": "pat@test.cd", "password": "S3cret!pass"})
	req, rec = newRequest(http.MethodPost, "/v1/users/login", login)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("pre-approval login: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// 4. only a super-admin may approve
	req, rec = newAuthRequest(http.MethodPost, "/v1/schools/"+regResp.School.ID+"/approve", getToken(t, superAdmin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var approved school.School
	if err := json.Unmarshal(rec.Body.Bytes(), &approved); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if !approved.IsActive {
		t.Error("school must be active after approval")
	}

	// 5. the principal can now sign in
	req, rec = newRequest(http.MethodPost, "/v1/users/login", login)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("post-approval login: code = %v; body %s", rec.Code, rec.Body.String())
	}
}

func Test_schoolApi_reject(t *testing.T) {
	app := setup(t)

	superAdmin := testutil.CreateUser(t, usrRepo, "Root", "root01", "root@test.cd", "", auth.RoleSuperAdmin, "", true)

	body := marchallObj(t, map[string]string{
		"name": "Green Hills", "code": "GHS-001", "address": "12 Hill Rd",
		"principal_name": "Pat Principal", "principal_email": "pat@test.cd",
		"principal_password": "S3cret!pass",
	})
	req, rec := newRequest(http.MethodPost, "/v1/schools/register", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var regResp echoapi.RegisterSchoolResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &regResp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	// rejection removes the school and its accounts
	req, rec = newAuthRequest(http.MethodPost, "/v1/schools/"+regResp.School.ID+"/reject", getToken(t, superAdmin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reject failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/schools/"+regResp.School.ID, getToken(t, superAdmin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("rejected school: code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	login := marchallObj(t, map[string]string{"username": "pat@test.cd", "password": "S3cret!pass"})
	req, rec = newRequest(http.MethodPost, "/v1/users/login", login)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("rejected principal login: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// active schools cannot be rejected
	sch := testutil.CreateSchool(t, schRepo, "Blue Lake", "BLK-001", true)
	req, rec = newAuthRequest(http.MethodPost, "/v1/schools/"+sch.ID+"/reject", getToken(t, superAdmin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reject active school: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_schoolApi_approve_permissions(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", false)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch.ID, true)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admins may not approve", token: getToken(t, admin),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/schools/" + sch.ID + "/approve"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_schoolApi_tenantIsolation(t *testing.T) {
	app := setup(t)

	sch1 := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	sch2 := testutil.CreateSchool(t, schRepo, "Blue Lake", "BLK-001", true)
	admin1 := testutil.CreateUser(t, usrRepo, "Admin One", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch1.ID, true)
	superAdmin := testutil.CreateUser(t, usrRepo, "Root", "root01", "root@test.cd", "", auth.RoleSuperAdmin, "", true)

	tests := []httpTest{
		{
			name: "admin reads own school", path: "/v1/schools/" + sch1.ID, token: getToken(t, admin1),
			wantCode: http.StatusOK, wantData: marchallObj(t, sch1),
		},
		{
			name: "another school looks absent", path: "/v1/schools/" + sch2.ID, token: getToken(t, admin1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "super-admin reads any school", path: "/v1/schools/" + sch2.ID, token: getToken(t, superAdmin),
			wantCode: http.StatusOK, wantData: marchallObj(t, sch2),
		},
		{
			name: "admin listing yields own school only", path: "/v1/schools", token: getToken(t, admin1),
			wantCode: http.StatusOK, wantData: marchallList(t, sch1),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_schoolApi_stats(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch.ID, true)
	testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, []string{"10-A"}, nil)
	testutil.CreateStudent(t, usrRepo, "Stu A", "studna", "stua@test.cd", "", sch.ID, "10-A")
	testutil.CreateStudent(t, usrRepo, "Stu B", "studnb", "stub@test.cd", "", sch.ID, "10-A")
	testutil.CreateClass(t, clsRepo, sch.ID, "10-A")

	req, rec := newAuthRequest(http.MethodGet, "/v1/schools/"+sch.ID+"/stats", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var stats school.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	want := school.Stats{TotalStudents: 2, TotalTeachers: 1, TotalClasses: 1}
	if stats != want {
		t.Errorf("stats = %+v; want %+v", stats, want)
	}
}
