package user

import (
	"context"

	"github.com/sharath2004/edubridge/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a ServiceInterface whose side-effecting
// operations run synchronously for deterministic tests.
func NewServiceMock(repo Repository, mailSvc core.EmailService, enrollment EnrollmentPolicy) ServiceInterface {
	return &serviceMock{
		service: service{
			repo:       repo,
			mailSvc:    mailSvc,
			enrollment: enrollment,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
