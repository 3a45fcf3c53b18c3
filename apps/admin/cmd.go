package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/kiwisport/clubboard/core/operator"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	opRepo operator.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addoperator -username USERNAME -email EMAIL [-admin] - update or create an operator")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an operator's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addOperatorCmd := flag.NewFlagSet("addoperator", flag.ExitOnError)
	addOperatorUname := addOperatorCmd.String("username", "", "The operator's username. The password will be prompted next.")
	addOperatorEmail := addOperatorCmd.String("email", "", "The operator's email.")
	addOperatorAdmin := addOperatorCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The operator's username or email. The password will be prompted next.")

	switch args[1] {
	case "addoperator":
		if err := addOperatorCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addOperatorUname == "" || *addOperatorEmail == "" {
			addOperatorCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addOperatorCmd.Usage()
			return errHelp
		}
		return cli.addOperator(*addOperatorUname, *addOperatorEmail, pwd, *addOperatorAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pwd)), nil
}
