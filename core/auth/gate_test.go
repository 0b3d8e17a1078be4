package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateAuthorize(t *testing.T) {
	gate := NewGate(assignmentLoaderStub{})

	teacher := Identity{ID: "t1", Role: RoleTeacher, SchoolID: "S1"}

	tests := []struct {
		name     string
		ident    Identity
		required []Role
		resource Resource
		action   Action
		wantErr  error
	}{
		{name: "no identity", ident: Identity{}, wantErr: ErrUnauthenticated},
		{name: "bogus role", ident: Identity{ID: "x", Role: "janitor"}, wantErr: ErrUnauthenticated},
		{
			name: "role not in required", ident: teacher,
			required: []Role{RolePrincipal, RoleAdmin}, wantErr: ErrRoleNotPermitted,
		},
		{
			name: "capability denied", ident: teacher,
			required: []Role{RoleTeacher}, resource: ResourceUsers, action: ActionRead,
			wantErr: ErrRoleNotPermitted,
		},
		{
			name: "teacher cannot delete students", ident: teacher,
			resource: ResourceStudents, action: ActionDelete, wantErr: ErrRoleNotPermitted,
		},
		{
			name: "ok with empty required", ident: teacher,
			resource: ResourceMarks, action: ActionCreate,
		},
		{
			name: "ok with empty resource", ident: teacher,
			required: []Role{RoleTeacher},
		},
		{
			name: "ok full check", ident: teacher,
			required: []Role{RoleTeacher, RolePrincipal}, resource: ResourceAttendance, action: ActionRead,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actx, err := gate.Authorize(tt.ident, tt.required, tt.resource, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, actx)
				return
			}
			assert.NoError(t, err)
			if assert.NotNil(t, actx) {
				assert.Equal(t, tt.ident, actx.Identity)
			}
		})
	}
}

// the 401 check runs before any resource/action check: an absent identity
// is never reported as a permission problem.
func TestGateAuthorize_unauthenticatedBeforeCapability(t *testing.T) {
	gate := NewGate(assignmentLoaderStub{})
	_, err := gate.Authorize(Identity{}, []Role{RoleSuperAdmin}, ResourceSchools, ActionDelete)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestContextScope(t *testing.T) {
	gate := NewGate(assignmentLoaderStub{byTeacher: map[string]Assignment{
		"t1": {Classes: []string{"10-A"}},
	}})

	actx, err := gate.Authorize(Identity{ID: "t1", Role: RoleTeacher, SchoolID: "S1"}, nil, ResourceStudents, ActionRead)
	assert.NoError(t, err)

	f, err := actx.Scope(context.Background(), ResourceStudents, Query{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"10-A"}, f.ClassNames)
	assert.Equal(t, "S1", f.SchoolID)
}
