package main

import (
	"context"

	"github.com/sharath2004/edubridge/core"
)

// approveSchool activates a pending school and its principal accounts.
func (cli *commandLine) approveSchool(code string) error {
	ctx := context.Background()
	sch, err := cli.schRepo.GetSchoolByCode(ctx, core.CleanString(code))
	if err != nil {
		return err
	}
	if _, err := cli.schSvc.Approve(ctx, sch.ID); err != nil {
		return err
	}
	return nil
}
