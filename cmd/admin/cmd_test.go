package main

import (
	"context"
	"errors"
	"testing"

	userModel "akademi/internal/model/user"
	"akademi/internal/pkg"
	"akademi/internal/testutils"
	"akademi/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *commandLine {
	db := testutils.SetupTestDB(t)
	return &commandLine{
		db:    db,
		users: user.NewUserRepository(db),
	}
}

// withPassword 替换终端读取，测试结束后恢复
func withPassword(t *testing.T, pwd string, err error) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), err
	}
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // 不含程序名
	pwd        string
	wantErr    error
	wantErrStr string
}

func runCLI(t *testing.T, cli *commandLine, tt cliTest) error {
	t.Helper()
	withPassword(t, tt.pwd, nil)
	return cli.run(append([]string{"admin"}, tt.args...))
}

func TestCommandLine_Usage(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "无子命令", wantErr: errHelp},
		{name: "未知子命令", args: []string{"lol"}, wantErr: errHelp},
		{name: "createsuperadmin 缺少参数", args: []string{"createsuperadmin", "-email", "root@example.com"}, wantErr: errHelp},
		{name: "createsuperadmin 未输入密码", args: []string{"createsuperadmin", "-email", "root@example.com", "-name", "Root Admin"}, wantErr: errHelp},
		{name: "resetpassword 缺少参数", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "resetpassword 未输入密码", args: []string{"resetpassword", "-email", "ana@example.com"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, cli, tt)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCommandLine_Migrate(t *testing.T) {
	cli := setup(t)
	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	// 重复执行不报错
	require.NoError(t, cli.run([]string{"admin", "migrate"}))
}

func TestCommandLine_CreateSuperadmin(t *testing.T) {
	cli := setup(t)
	testutils.CreateTestUser(cli.db, testutils.WithEmail("taken@example.com"))

	tests := []cliTest{
		{name: "邮箱格式错误", args: []string{"createsuperadmin", "-email", "not-an-email", "-name", "Root Admin"}, pwd: "Str0ngPass", wantErrStr: "email"},
		{name: "密码过短", args: []string{"createsuperadmin", "-email", "root@example.com", "-name", "Root Admin"}, pwd: "abc", wantErrStr: "password"},
		{name: "密码与邮箱相似", args: []string{"createsuperadmin", "-email", "rootadmin@example.com", "-name", "Laura Gomez"}, pwd: "rootadmin", wantErrStr: "password"},
		{name: "邮箱已存在", args: []string{"createsuperadmin", "-email", "taken@example.com", "-name", "Root Admin"}, pwd: "Str0ngPass", wantErr: ErrUserExists},
		{name: "创建成功", args: []string{"createsuperadmin", "-email", " Root@Example.com ", "-name", "Root Admin"}, pwd: "Str0ngPass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, cli, tt)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
		})
	}

	u, err := cli.users.FindByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, userModel.RoleSuperadmin, u.Role)
	assert.True(t, pkg.CheckPassword(u.PasswordHash, "Str0ngPass"))
}

func TestCommandLine_ResetPassword(t *testing.T) {
	cli := setup(t)
	u := testutils.CreateTestUser(cli.db, testutils.WithName("Ana Torres"), testutils.WithEmail("ana@example.com"))

	tests := []cliTest{
		{name: "用户不存在", args: []string{"resetpassword", "-email", "nobody@example.com"}, pwd: "N3wPassword", wantErr: ErrUserNotFound},
		{name: "密码过短", args: []string{"resetpassword", "-email", "ana@example.com"}, pwd: "abc", wantErrStr: "password"},
		{name: "密码与姓名相似", args: []string{"resetpassword", "-email", "ana@example.com"}, pwd: "anatorres", wantErr: ErrPasswordTooSimilar},
		{name: "重置成功", args: []string{"resetpassword", "-email", "ANA@example.com"}, pwd: "N3wPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, cli, tt)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
		})
	}

	refreshed, err := cli.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, pkg.CheckPassword(refreshed.PasswordHash, "N3wPassword"))
	assert.False(t, pkg.CheckPassword(refreshed.PasswordHash, testutils.DefaultPassword))
}

func TestCommandLine_ReadPasswordError(t *testing.T) {
	cli := setup(t)
	boom := errors.New("no tty")
	withPassword(t, "", boom)

	err := cli.run([]string{"admin", "resetpassword", "-email", "ana@example.com"})
	assert.ErrorIs(t, err, boom)
}
