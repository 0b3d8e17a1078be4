package tests

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/sharath2004/edubridge/core/auth"
	testutil "github.com/sharath2004/edubridge/tests"
)

func Test_academicApi_marks_scoping(t *testing.T) {
	app := setup(t)

	sch1 := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	sch2 := testutil.CreateSchool(t, schRepo, "Blue Lake", "BLK-001", true)

	admin1 := testutil.CreateUser(t, usrRepo, "Admin One", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch1.ID, true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch1.ID, []string{"10-A"}, []string{"Math"})
	noSubjects := testutil.CreateTeacher(t, usrRepo, "No Subjects", "nosubj", "nosubj@test.cd", "", sch1.ID, []string{"10-A"}, []string{})
	stuA := testutil.CreateStudent(t, usrRepo, "Stu A", "studna", "stua@test.cd", "", sch1.ID, "10-A")
	stuB := testutil.CreateStudent(t, usrRepo, "Stu B", "studnb", "stub@test.cd", "", sch1.ID, "10-B")
	stuX := testutil.CreateStudent(t, usrRepo, "Stu X", "studnx", "stux@test.cd", "", sch2.ID, "10-A")

	mA := testutil.CreateMark(t, acaRepo, sch1.ID, stuA.ID, "10-A", "Math", 15, 20)
	mB := testutil.CreateMark(t, acaRepo, sch1.ID, stuB.ID, "10-B", "Math", 12, 20)
	mX := testutil.CreateMark(t, acaRepo, sch2.ID, stuX.ID, "10-A", "Math", 18, 20)

	empty := marchallList(t, []interface{}{}...)

	path := func(params map[string]string) string {
		if len(params) == 0 {
			return "/v1/marks"
		}
		v := make(url.Values)
		for k, val := range params {
			v.Add(k, val)
		}
		return "/v1/marks?" + v.Encode()
	}

	tests := []httpTest{
		{name: "auth required", path: path(nil), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher sees assigned classes only", path: path(nil), token: getToken(t, teacher),
			wantData: marchallList(t, mA),
		},
		{
			name: "teacher requesting an unassigned class gets an empty list",
			path: path(map[string]string{"class_name": "10-B"}), token: getToken(t, teacher),
			wantData: empty,
		},
		{
			name: "teacher with no assigned subjects sees no marks",
			path: path(nil), token: getToken(t, noSubjects),
			wantData: empty,
		},
		{
			name: "student sees own marks only", path: path(nil), token: getToken(t, stuB),
			wantData: marchallList(t, mB),
		},
		{
			name: "admin sees the whole school", path: path(nil), token: getToken(t, admin1),
			wantData: marchallList(t, mA, mB),
		},
		{
			name: "admin requesting another school is rejected",
			path: path(map[string]string{"school_id": sch2.ID}), token: getToken(t, admin1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
	_ = mX
}

func Test_academicApi_recordMark(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	super := testutil.CreateUser(t, usrRepo, "Root", "suproot", "root@test.cd", "", auth.RoleSuperAdmin, "", true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, []string{"10-A"}, []string{"Math"})
	stuA := testutil.CreateStudent(t, usrRepo, "Stu A", "studna", "stua@test.cd", "", sch.ID, "10-A")
	stuB := testutil.CreateStudent(t, usrRepo, "Stu B", "studnb", "stub@test.cd", "", sch.ID, "10-B")

	payload := func(studentID, className, subject string) []byte {
		return marchallObj(t, map[string]interface{}{
			"student_id": studentID, "class_name": className, "subject": subject,
			"term": "T1", "score": 15, "max_score": 20,
		})
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "students may not record marks", token: getToken(t, stuA),
			body:     payload(stuA.ID, "10-A", "Math"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "teacher cannot record outside assigned classes", token: getToken(t, teacher),
			body:     payload(stuB.ID, "10-B", "Math"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
		{
			name: "teacher cannot record outside assigned subjects", token: getToken(t, teacher),
			body:     payload(stuA.ID, "10-A", "History"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
		{
			name: "super-admin must name the target school", token: getToken(t, super),
			body:     payload(stuA.ID, "10-A", "Math"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
		{
			name: "super-admin records a mark for an explicit school", token: getToken(t, super),
			path:     "/v1/marks?school_id=" + sch.ID,
			body:     payload(stuA.ID, "10-A", "Math"),
			wantCode: http.StatusCreated,
		},
		{
			name: "teacher records a mark in scope", token: getToken(t, teacher),
			body:     payload(stuA.ID, "10-A", "Math"),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		if tt.path == "" {
			tt.path = "/v1/marks"
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_academicApi_attendance(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, []string{"10-A"}, nil)
	stuA := testutil.CreateStudent(t, usrRepo, "Stu A", "studna", "stua@test.cd", "", sch.ID, "10-A")
	stuB := testutil.CreateStudent(t, usrRepo, "Stu B", "studnb", "stub@test.cd", "", sch.ID, "10-B")

	day := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	aA := testutil.CreateAttendance(t, acaRepo, sch.ID, stuA.ID, "10-A", "present", day)
	aB := testutil.CreateAttendance(t, acaRepo, sch.ID, stuB.ID, "10-B", "absent", day)

	tests := []httpTest{
		{name: "auth required", method: http.MethodGet, path: "/v1/attendance", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "teacher lists assigned classes only", method: http.MethodGet, path: "/v1/attendance",
			token: getToken(t, teacher), wantCode: http.StatusOK, wantData: marchallList(t, aA),
		},
		{
			name: "student lists own attendance only", method: http.MethodGet, path: "/v1/attendance",
			token: getToken(t, stuB), wantCode: http.StatusOK, wantData: marchallList(t, aB),
		},
		{
			name: "teacher marks attendance in scope", method: http.MethodPost, path: "/v1/attendance",
			token: getToken(t, teacher),
			body: marchallObj(t, map[string]string{
				"student_id": stuA.ID, "class_name": "10-A",
				"date": day.Format(time.RFC3339), "status": "late",
			}),
			wantCode: http.StatusCreated,
		},
		{
			name: "teacher cannot mark attendance outside scope", method: http.MethodPost, path: "/v1/attendance",
			token: getToken(t, teacher),
			body: marchallObj(t, map[string]string{
				"student_id": stuB.ID, "class_name": "10-B",
				"date": day.Format(time.RFC3339), "status": "present",
			}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
		{
			name: "invalid status is rejected", method: http.MethodPost, path: "/v1/attendance",
			token: getToken(t, teacher),
			body: marchallObj(t, map[string]string{
				"student_id": stuA.ID, "class_name": "10-A",
				"date": day.Format(time.RFC3339), "status": "vibing",
			}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
