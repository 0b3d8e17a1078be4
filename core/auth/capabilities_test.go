package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCapabilityTable walks the full role×resource×action cross-product
// against expectations; the table is data so it can be checked exhaustively.
func TestCapabilityTable(t *testing.T) {
	type want struct {
		resource Resource
		actions  Actions
	}
	tests := []struct {
		role  Role
		wants []want
	}{
		{
			role: RoleSuperAdmin,
			wants: []want{
				{ResourceSchools, crud}, {ResourceUsers, crud}, {ResourceStudents, crud},
				{ResourceTeachers, crud}, {ResourceClasses, crud}, {ResourceMarks, crud},
				{ResourceAttendance, crud}, {ResourceCourses, crud}, {ResourceQuizzes, crud},
			},
		},
		{
			role: RoleAdmin,
			wants: []want{
				{ResourceSchools, crud}, {ResourceUsers, crud}, {ResourceStudents, crud},
				{ResourceTeachers, crud}, {ResourceClasses, crud}, {ResourceMarks, crud},
				{ResourceAttendance, crud}, {ResourceCourses, crud}, {ResourceQuizzes, crud},
			},
		},
		{
			role: RolePrincipal,
			wants: []want{
				{ResourceSchools, ro}, {ResourceUsers, crud}, {ResourceStudents, crud},
				{ResourceTeachers, crud}, {ResourceClasses, crud}, {ResourceMarks, crud},
				{ResourceAttendance, crud}, {ResourceCourses, crud}, {ResourceQuizzes, crud},
			},
		},
		{
			role: RoleTeacher,
			wants: []want{
				{ResourceSchools, nil}, {ResourceUsers, nil}, {ResourceStudents, ro},
				{ResourceTeachers, nil}, {ResourceClasses, ro}, {ResourceMarks, cru},
				{ResourceAttendance, cru}, {ResourceCourses, cru}, {ResourceQuizzes, cru},
			},
		},
		{
			role: RoleStudent,
			wants: []want{
				{ResourceSchools, nil}, {ResourceUsers, nil}, {ResourceStudents, ro},
				{ResourceTeachers, nil}, {ResourceClasses, ro}, {ResourceMarks, ro},
				{ResourceAttendance, ro}, {ResourceCourses, ro}, {ResourceQuizzes, ro},
			},
		},
	}

	for _, tt := range tests {
		for _, w := range tt.wants {
			for _, action := range AllActions {
				got := Can(tt.role, w.resource, action)
				want := w.actions.Has(action)
				if got != want {
					t.Errorf("Can(%s, %s, %s) = %v; want %v", tt.role, w.resource, action, got, want)
				}
			}
		}
	}
}

func TestCan_unknownRoleOrResource(t *testing.T) {
	assert.False(t, Can("janitor", ResourceMarks, ActionRead))
	assert.False(t, Can(RoleTeacher, "grades", ActionRead))
}

func TestCapabilities_copy(t *testing.T) {
	caps := Capabilities(RoleTeacher)
	caps[ResourceMarks] = crud // mutating the copy must not leak into the table
	assert.False(t, Can(RoleTeacher, ResourceMarks, ActionDelete))

	assert.Nil(t, Capabilities("nobody"))
}

func TestRolePriority(t *testing.T) {
	assert.True(t, RolePriority(RoleSuperAdmin) > RolePriority(RoleAdmin))
	assert.True(t, RolePriority(RoleAdmin) > RolePriority(RolePrincipal))
	assert.True(t, RolePriority(RolePrincipal) > RolePriority(RoleTeacher))
	assert.True(t, RolePriority(RoleTeacher) > RolePriority(RoleStudent))
	assert.Zero(t, RolePriority("nobody"))
}
