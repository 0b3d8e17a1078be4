package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/course"
	testutil "github.com/sharath2004/edubridge/tests"
)

func createCourse(t *testing.T, schoolID, title, subject, className, createdBy string) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := crsRepo.CreateCourse(context.Background(), course.Course{
		SchoolID:  schoolID,
		Title:     title,
		Subject:   subject,
		ClassName: className,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func Test_courseApi_scoping(t *testing.T) {
	app := setup(t)

	sch1 := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	sch2 := testutil.CreateSchool(t, schRepo, "Blue Lake", "BLK-001", true)

	admin1 := testutil.CreateUser(t, usrRepo, "Admin One", "admin1", "admin1@test.cd", "", auth.RoleAdmin, sch1.ID, true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch1.ID, []string{"10-A"}, []string{"Math"})
	stuA := testutil.CreateStudent(t, usrRepo, "Stu A", "studna", "stua@test.cd", "", sch1.ID, "10-A")

	cA := createCourse(t, sch1.ID, "Algebra", "Math", "10-A", teacher.ID)
	cB := createCourse(t, sch1.ID, "World History", "History", "10-B", admin1.ID)
	cX := createCourse(t, sch2.ID, "Algebra", "Math", "10-A", "someone")

	tests := []httpTest{
		{name: "auth required", path: "/v1/courses", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin sees the whole school", path: "/v1/courses", token: getToken(t, admin1),
			wantData: marchallList(t, cA, cB),
		},
		{
			name: "teacher sees assigned classes and subjects only", path: "/v1/courses", token: getToken(t, teacher),
			wantData: marchallList(t, cA),
		},
		{
			name: "student sees own class courses", path: "/v1/courses?class_name=10-A", token: getToken(t, stuA),
			wantData: marchallList(t, cA),
		},
		{
			name: "cross-tenant course looks absent", path: "/v1/courses/" + cX.ID, token: getToken(t, admin1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
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
}

func Test_courseApi_create(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, []string{"10-A"}, []string{"Math"})
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")

	payload := func(title, subject, className string) []byte {
		return marchallObj(t, map[string]string{"title": title, "subject": subject, "class_name": className})
	}

	tests := []httpTest{
		{
			name: "students may not create courses", token: getToken(t, stu),
			body:     payload("Algebra", "Math", "10-A"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "teacher cannot create outside assigned classes", token: getToken(t, teacher),
			body:     payload("Algebra", "Math", "10-B"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
		{
			name: "teacher cannot create outside assigned subjects", token: getToken(t, teacher),
			body:     payload("World History", "History", "10-A"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errBadScope),
		},
		{
			name: "teacher creates a course in scope", token: getToken(t, teacher),
			body:     payload("Algebra", "Math", "10-A"),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/courses"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var crs course.Course
				if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if crs.CreatedBy != teacher.ID {
					t.Errorf("CreatedBy = %v; want %v", crs.CreatedBy, teacher.ID)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_quizzes(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, []string{"10-A"}, []string{"Math"})
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")

	crs := createCourse(t, sch.ID, "Algebra", "Math", "10-A", teacher.ID)

	questions := []map[string]interface{}{
		{"prompt": "2+2?", "options": []string{"3", "4", "5", "6"}, "answer": 1},
	}

	// teacher creates a quiz on their course
	body := marchallObj(t, map[string]interface{}{"course_id": crs.ID, "title": "Quiz 1", "questions": questions})
	req, rec := newAuthRequest(http.MethodPost, "/v1/quizzes", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var quiz course.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &quiz); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	// the teacher can retitle their quiz
	body = marchallObj(t, map[string]string{"title": "Quiz 1 (revised)"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/quizzes/"+quiz.ID, getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update quiz failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &quiz); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if quiz.Title != "Quiz 1 (revised)" {
		t.Errorf("Title = %v; want %v", quiz.Title, "Quiz 1 (revised)")
	}

	// unknown course is a field error
	body = marchallObj(t, map[string]interface{}{"course_id": "nope", "title": "Quiz 2", "questions": questions})
	req, rec = newAuthRequest(http.MethodPost, "/v1/quizzes", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown course: code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// students may not create quizzes
	body = marchallObj(t, map[string]interface{}{"course_id": crs.ID, "title": "Quiz 3", "questions": questions})
	req, rec = newAuthRequest(http.MethodPost, "/v1/quizzes", getToken(t, stu), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student create quiz: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// the student can read quizzes of their class
	req, rec = newAuthRequest(http.MethodGet, "/v1/quizzes", getToken(t, stu))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list quizzes failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var quizzes []course.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &quizzes); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != quiz.ID {
		t.Errorf("quizzes = %+v; want the created quiz only", quizzes)
	}
}
