// Package sqlxrepos implements the core repositories on PostgreSQL.
//
// Queries are written with "?" bindvars, expanded with sqlx.In where a
// filter carries an IN-list, and rebound for the active driver.
package sqlxrepos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sharath2004/edubridge/core"
	"github.com/sharath2004/edubridge/core/auth"
)

// scopeCols maps the scope filter dimensions onto a table's columns.
// An empty column means the table has no such dimension and the
// corresponding filter field is ignored.
type scopeCols struct {
	school  string
	student string
	class   string
	subject string
}

// scopeWhere translates the mandatory scope filter into WHERE fragments.
// A guaranteed-empty filter yields FALSE so nothing can match.
func scopeWhere(scope auth.Filter, cols scopeCols) (conds []string, args []interface{}) {
	if scope.IsMatchNone() {
		return []string{"FALSE"}, nil
	}
	if cols.school != "" && scope.SchoolID != "" {
		conds = append(conds, cols.school+" = ?")
		args = append(args, scope.SchoolID)
	}
	if cols.student != "" && scope.StudentID != "" {
		conds = append(conds, cols.student+" = ?")
		args = append(args, scope.StudentID)
	}
	if cols.class != "" {
		if scope.ClassName != "" {
			conds = append(conds, cols.class+" = ?")
			args = append(args, scope.ClassName)
		}
		if scope.ClassNames != nil {
			if len(scope.ClassNames) == 0 {
				conds = append(conds, "FALSE")
			} else {
				conds = append(conds, cols.class+" IN (?)")
				args = append(args, scope.ClassNames)
			}
		}
	}
	if cols.subject != "" {
		if scope.Subject != "" {
			conds = append(conds, cols.subject+" = ?")
			args = append(args, scope.Subject)
		}
		if scope.Subjects != nil {
			if len(scope.Subjects) == 0 {
				conds = append(conds, "FALSE")
			} else {
				conds = append(conds, cols.subject+" IN (?)")
				args = append(args, scope.Subjects)
			}
		}
	}
	return conds, args
}

// buildQuery joins the SELECT head with its conditions, expands IN-lists
// and rebinds for the driver.
func buildQuery(db *sqlx.DB, head string, conds []string, args []interface{}, tail string) (string, []interface{}, error) {
	q := head
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if tail != "" {
		q += " " + tail
	}
	q, expanded, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(q), expanded, nil
}

func orderClause(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return "ORDER BY " + strings.Join(orderList, ", ")
}
