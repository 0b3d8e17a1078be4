// Package inmemdb provides in-memory repositories for tests and quick
// local runs without PostgreSQL. The scope filter semantics match the
// SQL repositories.
package inmemdb

import (
	"sync"

	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
	"github.com/sharath2004/edubridge/core/course"
	"github.com/sharath2004/edubridge/core/school"
	"github.com/sharath2004/edubridge/core/user"
)

type DB struct {
	mu         sync.RWMutex
	users      map[string]*user.User
	schools    map[string]*school.School
	classes    map[string]*class.Class
	marks      map[string]*academic.Mark
	attendance map[string]*academic.Attendance
	courses    map[string]*course.Course
	quizzes    map[string]*course.Quiz
}

func Open() *DB {
	return &DB{
		users:      make(map[string]*user.User),
		schools:    make(map[string]*school.School),
		classes:    make(map[string]*class.Class),
		marks:      make(map[string]*academic.Mark),
		attendance: make(map[string]*academic.Attendance),
		courses:    make(map[string]*course.Course),
		quizzes:    make(map[string]*course.Quiz),
	}
}

// admits mirrors the SQL scope translation: nil dimension pointers mean
// the entity has no such column and the filter field is ignored.
func admits(scope auth.Filter, schoolID, studentID, className, subject *string) bool {
	if scope.IsMatchNone() {
		return false
	}
	if scope.SchoolID != "" && schoolID != nil && *schoolID != scope.SchoolID {
		return false
	}
	if scope.StudentID != "" && studentID != nil && *studentID != scope.StudentID {
		return false
	}
	if className != nil {
		if scope.ClassName != "" && *className != scope.ClassName {
			return false
		}
		if scope.ClassNames != nil && !inList(scope.ClassNames, *className) {
			return false
		}
	}
	if subject != nil {
		if scope.Subject != "" && *subject != scope.Subject {
			return false
		}
		if scope.Subjects != nil && !inList(scope.Subjects, *subject) {
			return false
		}
	}
	return true
}

func inList(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func str(s string) *string { return &s }
