package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/sharath2004/edubridge/core/school"
	"github.com/sharath2004/edubridge/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
	schRepo school.Repository
	schSvc  school.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (up, down, status, ...)")
	fmt.Println("  addsuperuser -username USERNAME -email EMAIL - create a super-admin. The password will be prompted next.")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  approveschool -code CODE - approve a pending school registration")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addSuperuserCmd := flag.NewFlagSet("addsuperuser", flag.ExitOnError)
	addSuperuserUname := addSuperuserCmd.String("username", "", "The super-admin's username.")
	addSuperuserEmail := addSuperuserCmd.String("email", "", "The super-admin's email.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	approveSchoolCmd := flag.NewFlagSet("approveschool", flag.ExitOnError)
	approveSchoolCode := approveSchoolCmd.String("code", "", "The school's registration code.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addsuperuser":
		if err := addSuperuserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSuperuserUname == "" || *addSuperuserEmail == "" {
			addSuperuserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addSuperuserCmd.Usage()
			return errHelp
		}
		return cli.addSuperuser(*addSuperuserUname, *addSuperuserEmail, string(pwd))
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, string(pwd))
	case "approveschool":
		if err := approveSchoolCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveSchoolCode == "" {
			approveSchoolCmd.Usage()
			return errHelp
		}
		return cli.approveSchool(*approveSchoolCode)
	default:
		cli.printUsage()
		return errHelp
	}
}
