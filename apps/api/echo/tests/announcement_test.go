package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_announcementApi_query(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "otherly", "other@test.cd", "", user.TeacherRoles, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "heroman", "hero@test.cd", "", user.StudentRoles, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra I", teacher.ID)

	t0 := time.Now().UTC().Add(-2 * time.Hour)
	older := testutil.CreateAnnouncement(t, annRepo, teacher.ID, "", "Welcome", "School opens Monday", t0)
	newer := testutil.CreateAnnouncement(t, annRepo, teacher.ID, crs.ID, "Quiz", "Quiz on Friday", t0.Add(time.Hour))
	testutil.CreateAnnouncement(t, annRepo, other.ID, "", "Not yours", "other teacher's note", t0)

	var crsCopy = crs // decorated course is attached by pointer
	tests := []httpTest{
		{name: "Auth required", path: "/v1/announcements", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teacher required", path: "/v1/announcements", token: getToken(t, hero), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Own announcements, newest first", path: "/v1/announcements", token: getToken(t, teacher), wantCode: http.StatusOK,
			wantData: marchallList(t,
				announcement.Detail{Announcement: newer, Course: &crsCopy},
				announcement.Detail{Announcement: older},
			),
		},
		{
			name: "Course filter", path: "/v1/announcements?course_id=" + crs.ID, token: getToken(t, teacher), wantCode: http.StatusOK,
			wantData: marchallList(t, announcement.Detail{Announcement: newer, Course: &crsCopy}),
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

func Test_announcementApi_create(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "otherly", "other@test.cd", "", user.TeacherRoles, true)
	otherCrs := testutil.CreateCourse(t, crsRepo, "Biology", other.ID)
	token := getToken(t, teacher)

	t.Run("required fields", func(t *testing.T) {
		tt := httpTest{
			body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required", "content": "this field is required"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("someone else's course rejected", func(t *testing.T) {
		tt := httpTest{
			body:     marchallObj(t, announcement.NewAnnouncement{Title: "Hi", Content: "there", CourseID: otherCrs.ID}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "not the course teacher"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("created school-wide", func(t *testing.T) {
		body := marchallObj(t, announcement.NewAnnouncement{Title: "Welcome", Content: "School opens Monday"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
		}
		var ann announcement.Announcement
		if err := json.Unmarshal(rec.Body.Bytes(), &ann); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if ann.ID == "" || ann.TeacherID != teacher.ID || !ann.SchoolWide() {
			t.Errorf("failed! announcement = %+v", ann)
		}
	})
}

func Test_announcementApi_update(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "otherly", "other@test.cd", "", user.TeacherRoles, true)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra I", teacher.ID)
	ann := testutil.CreateAnnouncement(t, annRepo, teacher.ID, crs.ID, "Quiz", "Quiz on Friday")

	t.Run("not owner", func(t *testing.T) {
		tt := httpTest{
			body:     marchallObj(t, announcement.UpdateAnnouncement{Title: "hijack"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "not the announcement owner"}),
		}
		req, rec := newAuthRequest(http.MethodPut, "/v1/announcements/"+ann.ID, getToken(t, other), tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("title updated, course preserved", func(t *testing.T) {
		body := marchallObj(t, announcement.UpdateAnnouncement{Title: "Quiz moved"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/announcements/"+ann.ID, getToken(t, teacher), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var upd announcement.Announcement
		if err := json.Unmarshal(rec.Body.Bytes(), &upd); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if upd.Title != "Quiz moved" || upd.Content != ann.Content || upd.CourseID != crs.ID {
			t.Errorf("failed! announcement = %+v", upd)
		}
	})

	t.Run("course cleared", func(t *testing.T) {
		schoolWide := ""
		body := marchallObj(t, announcement.UpdateAnnouncement{CourseID: &schoolWide})
		req, rec := newAuthRequest(http.MethodPut, "/v1/announcements/"+ann.ID, getToken(t, teacher), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var upd announcement.Announcement
		if err := json.Unmarshal(rec.Body.Bytes(), &upd); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		if !upd.SchoolWide() {
			t.Errorf("failed! announcement = %+v", upd)
		}
	})
}

func Test_announcementApi_destroy(t *testing.T) {
	resetServer(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", "", user.TeacherRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "otherly", "other@test.cd", "", user.TeacherRoles, true)
	ann := testutil.CreateAnnouncement(t, annRepo, teacher.ID, "", "Welcome", "School opens Monday")

	tests := []httpTest{
		{
			name: "Not owner", token: getToken(t, other), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "not the announcement owner"}),
		},
		{name: "Deleted", token: getToken(t, teacher), wantCode: http.StatusNoContent},
		{
			name: "Gone", token: getToken(t, teacher), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "announcement not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete
		tt.path = "/v1/announcements/" + ann.ID

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
