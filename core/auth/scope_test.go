package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type assignmentLoaderStub struct {
	byTeacher map[string]Assignment
}

func (s assignmentLoaderStub) TeacherAssignment(_ context.Context, teacherID string) (Assignment, error) {
	return s.byTeacher[teacherID], nil
}

func newTestScoper(byTeacher map[string]Assignment) *Scoper {
	return NewScoper(assignmentLoaderStub{byTeacher: byTeacher})
}

func TestDeriveFilter_superAdmin(t *testing.T) {
	scoper := newTestScoper(nil)
	su := Identity{ID: "sa1", Role: RoleSuperAdmin}
	ctx := context.Background()

	// explicit narrowing passes through unchanged
	f, err := scoper.DeriveFilter(ctx, su, ResourceStudents, Query{SchoolID: "S1"})
	assert.NoError(t, err)
	assert.Equal(t, Filter{SchoolID: "S1"}, f)

	// no narrowing: all schools
	f, err = scoper.DeriveFilter(ctx, su, ResourceStudents, Query{})
	assert.NoError(t, err)
	assert.Equal(t, Filter{}, f)
}

func TestDeriveFilter_principalAndAdmin(t *testing.T) {
	scoper := newTestScoper(nil)
	ctx := context.Background()

	for _, role := range []Role{RolePrincipal, RoleAdmin} {
		ident := Identity{ID: "u1", Role: role, SchoolID: "S1"}

		f, err := scoper.DeriveFilter(ctx, ident, ResourceStudents, Query{})
		assert.NoError(t, err)
		assert.Equal(t, "S1", f.SchoolID, "role %s", role)

		// own school explicitly requested is fine
		f, err = scoper.DeriveFilter(ctx, ident, ResourceStudents, Query{SchoolID: "S1"})
		assert.NoError(t, err)
		assert.Equal(t, "S1", f.SchoolID)

		// cross-tenant query rejected
		_, err = scoper.DeriveFilter(ctx, ident, ResourceStudents, Query{SchoolID: "other-school"})
		assert.ErrorIs(t, err, ErrForbiddenScope, "role %s", role)
	}
}

func TestDeriveFilter_teacher(t *testing.T) {
	scoper := newTestScoper(map[string]Assignment{
		"t1": {Classes: []string{"10-A"}, Subjects: []string{"Maths"}},
		"t3": {Classes: []string{"10-B"}, Subjects: []string{}},
		// t2 has no assignment
	})
	ctx := context.Background()
	teacher := Identity{ID: "t1", Role: RoleTeacher, SchoolID: "S1"}

	f, err := scoper.DeriveFilter(ctx, teacher, ResourceStudents, Query{})
	assert.NoError(t, err)
	assert.Equal(t, "S1", f.SchoolID)
	assert.Equal(t, []string{"10-A"}, f.ClassNames)
	assert.Nil(t, f.Subjects) // students have no subject dimension

	// subject-scoped resource gets the assigned-subjects restriction
	f, err = scoper.DeriveFilter(ctx, teacher, ResourceMarks, Query{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Maths"}, f.Subjects)

	// requesting a class outside the assignment keeps the mandatory IN
	// restriction; the combined filter matches nothing but is not an error
	f, err = scoper.DeriveFilter(ctx, teacher, ResourceStudents, Query{ClassName: "10-B"})
	assert.NoError(t, err)
	assert.Equal(t, "10-B", f.ClassName)
	assert.Equal(t, []string{"10-A"}, f.ClassNames)

	// zero assigned classes must never mean "see everything"
	empty := Identity{ID: "t2", Role: RoleTeacher, SchoolID: "S1"}
	f, err = scoper.DeriveFilter(ctx, empty, ResourceStudents, Query{})
	assert.NoError(t, err)
	assert.True(t, f.IsMatchNone())

	// classes assigned but no subjects: the empty non-nil Subjects
	// restriction matches nothing on subject-scoped resources
	noSubjects := Identity{ID: "t3", Role: RoleTeacher, SchoolID: "S1"}
	f, err = scoper.DeriveFilter(ctx, noSubjects, ResourceMarks, Query{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"10-B"}, f.ClassNames)
	assert.NotNil(t, f.Subjects)
	assert.Empty(t, f.Subjects)

	// cross-tenant rejected before the assignment load
	_, err = scoper.DeriveFilter(ctx, teacher, ResourceStudents, Query{SchoolID: "S2"})
	assert.ErrorIs(t, err, ErrForbiddenScope)
}

func TestDeriveFilter_student(t *testing.T) {
	scoper := newTestScoper(nil)
	ctx := context.Background()
	student := Identity{ID: "st1", Role: RoleStudent, SchoolID: "S1"}

	queries := []Query{
		{},
		{StudentID: "st1"},
		{StudentID: "someone-else"}, // overridden, not rejected
	}
	for _, q := range queries {
		f, err := scoper.DeriveFilter(ctx, student, ResourceMarks, q)
		assert.NoError(t, err)
		assert.Equal(t, "st1", f.StudentID, "query %+v", q)
		assert.Equal(t, "S1", f.SchoolID)
	}
}

func TestDeriveFilter_unauthenticated(t *testing.T) {
	scoper := newTestScoper(nil)
	_, err := scoper.DeriveFilter(context.Background(), Identity{}, ResourceStudents, Query{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
