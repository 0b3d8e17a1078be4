package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/sharath2004/edubridge/core/academic"
	"github.com/sharath2004/edubridge/core/auth"
	"github.com/sharath2004/edubridge/core/class"
	"github.com/sharath2004/edubridge/core/school"
	"github.com/sharath2004/edubridge/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role auth.Role,
	schoolID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		SchoolID:  schoolID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTeacher creates an active teacher with class/subject assignments.
func CreateTeacher(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, schoolID string,
	classes, subjects []string,
) user.User {
	t.Helper()

	usr := CreateUser(t, repo, name, uname, email, pwd, auth.RoleTeacher, schoolID, true)
	usr.AssignedClasses = classes
	usr.AssignedSubjects = subjects
	usr, err := repo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return usr
}

// CreateStudent creates an active student enrolled in className.
func CreateStudent(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, schoolID, className string,
) user.User {
	t.Helper()

	usr := CreateUser(t, repo, name, uname, email, pwd, auth.RoleStudent, schoolID, true)
	usr.ClassName = className
	usr, err := repo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

func CreateSchool(
	t *testing.T,
	repo school.Repository,
	name, code string,
	isActive bool,
) school.School {
	t.Helper()

	now := time.Now().UTC()
	sch, err := repo.CreateSchool(context.Background(), school.School{
		Name:      name,
		Code:      code,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

func CreateClass(
	t *testing.T,
	repo class.Repository,
	schoolID, className string,
) class.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), class.Class{
		SchoolID:  schoolID,
		ClassName: className,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateMark(
	t *testing.T,
	repo academic.Repository,
	schoolID, studentID, className, subject string,
	score, maxScore float64,
) academic.Mark {
	t.Helper()

	now := time.Now().UTC()
	m, err := repo.CreateMark(context.Background(), academic.Mark{
		SchoolID:  schoolID,
		StudentID: studentID,
		ClassName: className,
		Subject:   subject,
		Term:      "T1",
		Score:     score,
		MaxScore:  maxScore,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMark() failed: %v", err)
	}
	return m
}

func CreateAttendance(
	t *testing.T,
	repo academic.Repository,
	schoolID, studentID, className, status string,
	date time.Time,
) academic.Attendance {
	t.Helper()

	a, err := repo.CreateAttendance(context.Background(), academic.Attendance{
		SchoolID:  schoolID,
		StudentID: studentID,
		ClassName: className,
		Date:      date.UTC(),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return a
}
