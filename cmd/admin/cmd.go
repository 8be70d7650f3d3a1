package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"
	"syscall"

	"akademi/internal/auth"
	"akademi/internal/model"
	userModel "akademi/internal/model/user"
	"akademi/internal/pkg"
	"akademi/internal/user"
	"akademi/internal/validation"
	"akademi/pkg/response"

	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
	// ErrUserExists 邮箱已被占用
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound 邮箱不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordTooSimilar 新密码与姓名或邮箱过于相似
	ErrPasswordTooSimilar = errors.New("password cannot be similar to the user's name or email")
)

type commandLine struct {
	db    *gorm.DB
	users *user.UserRepository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate                                    - create or update the database tables")
	fmt.Println("  createsuperadmin -email EMAIL -name NAME   - create a superadmin account")
	fmt.Println("  resetpassword -email EMAIL                 - reset a user's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createCmd := flag.NewFlagSet("createsuperadmin", flag.ContinueOnError)
	createEmail := createCmd.String("email", "", "The superadmin's email. The password will be prompted next.")
	createName := createCmd.String("name", "", "The superadmin's full name.")

	resetCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetEmail := resetCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		return model.InitTable(cli.db)
	case "createsuperadmin":
		if err := createCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createEmail == "" || *createName == "" {
			createCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createCmd.Usage()
			return errHelp
		}
		return cli.createSuperadmin(*createName, *createEmail, pwd)
	case "resetpassword":
		if err := resetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetEmail == "" {
			resetCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetEmail, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// createSuperadmin 与 POST /auth/create-superadmin 使用同一套校验
func (cli *commandLine) createSuperadmin(name, email, pwd string) error {
	ctx := context.Background()
	req := auth.CreateSuperadminRequest{
		Name:     strings.TrimSpace(name),
		Email:    user.NormalizeEmail(email),
		Password: pwd,
	}
	if bizErr := validation.Struct(req); bizErr != nil {
		return describe(bizErr)
	}

	hash, err := pkg.HashPassword(pwd)
	if err != nil {
		return err
	}
	u := &userModel.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         userModel.RoleSuperadmin,
	}
	if err := cli.users.Create(ctx, u); err != nil {
		if pkg.IsUniqueViolation(err) {
			return ErrUserExists
		}
		return err
	}
	fmt.Printf("superadmin %s created (id=%d)\n", u.Email, u.ID)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	if bizErr := validation.Struct(auth.ResetPasswordRequest{Password: pwd}); bizErr != nil {
		return describe(bizErr)
	}

	u, err := cli.users.FindByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if pkg.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if validation.TooSimilar(pwd, u.Name, u.Email) {
		return ErrPasswordTooSimilar
	}

	hash, err := pkg.HashPassword(pwd)
	if err != nil {
		return err
	}
	if err := cli.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	fmt.Printf("password of %s updated\n", u.Email)
	return nil
}

// describe 把字段校验错误展开成一行
func describe(bizErr *response.BusinessError) error {
	if len(bizErr.Fields) == 0 {
		return bizErr
	}
	keys := make([]string, 0, len(bizErr.Fields))
	for k := range bizErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+bizErr.Fields[k])
	}
	return fmt.Errorf("%s (%s)", bizErr.Msg, strings.Join(parts, "; "))
}
