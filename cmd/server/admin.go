package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/logging"
	"github.com/schoolsite/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCreateAdminCommand(configFile *string) *cobra.Command {
	var (
		email    string
		password string
		fullName string
		role     string
		reset    bool
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office account or reset its password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := loadConfig(*configFile, cmd.Flags())
			if err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err := openDatabase(cfg); err != nil {
				return fmt.Errorf("数据库初始化失败: %w", err)
			}

			if password == "" {
				password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			auth := service.NewAuthService(db.DB)
			if reset {
				if err := auth.SetPassword(email, password); err != nil {
					return fmt.Errorf("重置密码失败: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
				return nil
			}

			user, err := auth.CreateUser(email, password, fullName, role)
			if errors.Is(err, service.ErrDuplicate) {
				return fmt.Errorf("用户 %s 已存在，使用 --reset 重置密码", email)
			}
			if err != nil {
				return fmt.Errorf("创建用户失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s account %s (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, prompted when empty")
	cmd.Flags().StringVar(&fullName, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", db.RoleAdmin, "admin, teacher, student or parent")
	cmd.Flags().BoolVar(&reset, "reset", false, "reset the password of an existing account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword 在终端上关闭回显读取两次密码，管道输入时读取第一行。
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		fmt.Fprint(prompt, "Repeat password: ")
		second, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
