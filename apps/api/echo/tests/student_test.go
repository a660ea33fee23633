package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_studentApi_query(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "otherly", "other@test.cd", "", user.TeacherRoles, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", user.StudentRoles, true)
	zed := testutil.CreateUser(t, usrRepo, "Zed", "zedzed", "zed@test.cd", "", user.StudentRoles, true)

	testutil.CreateCourse(t, crsRepo, "Algebra I", teacher.ID, hero.ID)
	testutil.CreateCourse(t, crsRepo, "Biology", other.ID, zed.ID)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", token: getToken(t, hero), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/students"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Own students only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", getToken(t, teacher))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var details []student.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if len(details) != 1 || details[0].ID != hero.ID {
			t.Errorf("failed! students = %+v", details)
		}
	})
}

func Test_studentApi_retrieve(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", user.StudentRoles, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra I", teacher.ID, hero.ID)
	token := getToken(t, teacher)

	tests := []httpTest{
		{
			name: "Detail with enrollments", path: "/v1/students/" + hero.ID, token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, student.Detail{
				User:            hero,
				EnrolledCourses: []course.Course{crs},
				Grades:          []student.Grade{},
				Attendance:      []student.Attendance{},
			}),
		},
		{
			name: "Not found", path: "/v1/students/04d46550-65cc-48a4-9e1a-ad08c4d9b555", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"}),
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

func Test_studentApi_recordGrade(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", user.StudentRoles, true)
	zed := testutil.CreateUser(t, usrRepo, "Zed", "zedzed", "zed@test.cd", "", user.StudentRoles, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra I", teacher.ID, hero.ID)
	asg := testutil.CreateAssignment(t, crsRepo, crs.ID, "Homework 1", time.Now().UTC().Add(24*time.Hour))
	token := getToken(t, teacher)

	t.Run("recorded", func(t *testing.T) {
		body := marchallObj(t, student.NewGrade{StudentID: hero.ID, AssignmentID: asg.ID, CourseID: crs.ID, Score: 85})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		var grd student.Grade
		if err := json.Unmarshal(rec.Body.Bytes(), &grd); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if grd.ID == "" || grd.Score != 85 || grd.StudentID != hero.ID {
			t.Errorf("failed! grade = %+v", grd)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		tt := httpTest{
			body:     marchallObj(t, student.NewGrade{StudentID: zed.ID, AssignmentID: asg.ID, CourseID: crs.ID, Score: 85}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "student is not enrolled in this course"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_studentApi_recordAttendance(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", user.StudentRoles, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra I", teacher.ID, hero.ID)
	date := time.Now().UTC().Truncate(24 * time.Hour)

	body := marchallObj(t, student.NewAttendance{StudentID: hero.ID, CourseID: crs.ID, Date: date, Present: true})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
	}
	var att student.Attendance
	if err := json.Unmarshal(rec.Body.Bytes(), &att); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if att.ID == "" || !att.Present || !att.Date.Equal(date) {
		t.Errorf("failed! attendance = %+v", att)
	}
}
