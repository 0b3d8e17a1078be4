package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/sharath2004/edubridge/apps/api/echo"
	testutil "github.com/sharath2004/edubridge/tests"
)

func Test_assistantApi_chat(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "empty prompt", token: getToken(t, stu), body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"prompt": "this field is required"}),
		},
		{
			name: "chat", token: getToken(t, stu),
			body:     marchallObj(t, map[string]interface{}{"prompt": "What is photosynthesis?"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/assistant/chat"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var resp echoapi.ChatResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if resp.Reply == "" {
					t.Error("failed! empty reply")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assistantApi_generateQuiz(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teach1", "teach@test.cd", "", sch.ID, []string{"10-A"}, []string{"Math"})
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")

	body := marchallObj(t, map[string]interface{}{
		"subject": "Math", "class_name": "10-A", "topic": "Fractions", "count": 3,
	})

	// students may not draft quizzes
	req, rec := newAuthRequest(http.MethodPost, "/v1/assistant/quiz", getToken(t, stu), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student quiz draft: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// teachers may
	req, rec = newAuthRequest(http.MethodPost, "/v1/assistant/quiz", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("quiz draft failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.GenerateQuizResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(resp.Questions) != 3 {
		t.Errorf("len(Questions) = %v; want 3", len(resp.Questions))
	}
	for _, q := range resp.Questions {
		if len(q.Options) != 4 {
			t.Errorf("len(Options) = %v; want 4", len(q.Options))
		}
		if q.Answer < 0 || q.Answer > 3 {
			t.Errorf("Answer = %v; want 0..3", q.Answer)
		}
	}
}

func Test_assistantApi_explain(t *testing.T) {
	app := setup(t)

	sch := testutil.CreateSchool(t, schRepo, "Green Hills", "GHS-001", true)
	stu := testutil.CreateStudent(t, usrRepo, "Stu", "studn1", "stu@test.cd", "", sch.ID, "10-A")

	body := marchallObj(t, map[string]string{"subject": "Biology", "topic": "Photosynthesis"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/assistant/explain", getToken(t, stu), body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("explain failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.ExplainResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if resp.Explanation == "" {
		t.Error("failed! empty explanation")
	}
}
