package auth

// Resources
type Resource string

const (
	ResourceSchools    Resource = "schools"
	ResourceUsers      Resource = "users"
	ResourceStudents   Resource = "students"
	ResourceTeachers   Resource = "teachers"
	ResourceClasses    Resource = "classes"
	ResourceMarks      Resource = "marks"
	ResourceAttendance Resource = "attendance"
	ResourceCourses    Resource = "courses"
	ResourceQuizzes    Resource = "quizzes"
)

// Actions
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	AllResources = []Resource{
		ResourceSchools, ResourceUsers, ResourceStudents, ResourceTeachers,
		ResourceClasses, ResourceMarks, ResourceAttendance, ResourceCourses, ResourceQuizzes,
	}
	AllActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
)

type Actions []Action

func (as Actions) Has(a Action) bool {
	for _, x := range as {
		if x == a {
			return true
		}
	}
	return false
}

var (
	crud = Actions{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	cru  = Actions{ActionCreate, ActionRead, ActionUpdate}
	ro   = Actions{ActionRead}
)

// capabilityTable enumerates, per role, the resources and actions it may
// touch. Scoping (which rows within a resource) is the scope filter's
// concern, not this table's.
var capabilityTable = map[Role]map[Resource]Actions{
	RoleSuperAdmin: allResourceActions(crud),
	RoleAdmin:      allResourceActions(crud),
	RolePrincipal: {
		ResourceSchools:    ro, // own school record & stats
		ResourceUsers:      crud,
		ResourceStudents:   crud,
		ResourceTeachers:   crud,
		ResourceClasses:    crud,
		ResourceMarks:      crud,
		ResourceAttendance: crud,
		ResourceCourses:    crud,
		ResourceQuizzes:    crud,
	},
	RoleTeacher: {
		ResourceStudents:   ro,
		ResourceClasses:    ro,
		ResourceMarks:      cru,
		ResourceAttendance: cru,
		ResourceCourses:    cru,
		ResourceQuizzes:    cru,
	},
	RoleStudent: {
		ResourceStudents:   ro, // self only, via scope filter
		ResourceClasses:    ro,
		ResourceMarks:      ro,
		ResourceAttendance: ro,
		ResourceCourses:    ro,
		ResourceQuizzes:    ro,
	},
}

func allResourceActions(as Actions) map[Resource]Actions {
	m := make(map[Resource]Actions, len(AllResources))
	for _, r := range AllResources {
		m[r] = as
	}
	return m
}

// Capabilities returns a copy of the capability row for role.
func Capabilities(role Role) map[Resource]Actions {
	row, ok := capabilityTable[role]
	if !ok {
		return nil
	}
	cp := make(map[Resource]Actions, len(row))
	for res, acts := range row {
		cp[res] = append(Actions(nil), acts...)
	}
	return cp
}

// Can reports whether role may perform action on resource.
func Can(role Role, resource Resource, action Action) bool {
	row, ok := capabilityTable[role]
	if !ok {
		return false
	}
	acts, ok := row[resource]
	if !ok {
		return false
	}
	return acts.Has(action)
}
