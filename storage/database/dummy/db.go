package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/announcement"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/iep"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user         *userTable
		course       *courseTable
		student      *studentTable
		announcement *announcementTable
		iep          *iepTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		courses     map[string]*course.Course
		assignments map[string]*course.Assignment
	}

	studentTable struct {
		sync.RWMutex
		grades     map[string]*student.Grade
		attendance map[string]*student.Attendance
	}

	announcementTable struct {
		sync.RWMutex
		table map[string]*announcement.Announcement
	}

	iepTable struct {
		sync.RWMutex
		drafts      map[string]*iep.Draft
		serviceLogs map[string]*iep.ServiceLog
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			courses:     make(map[string]*course.Course),
			assignments: make(map[string]*course.Assignment),
		},
		student: &studentTable{
			grades:     make(map[string]*student.Grade),
			attendance: make(map[string]*student.Attendance),
		},
		announcement: &announcementTable{table: make(map[string]*announcement.Announcement)},
		iep: &iepTable{
			drafts:      make(map[string]*iep.Draft),
			serviceLogs: make(map[string]*iep.ServiceLog),
		},
	}
	return db, nil
}
