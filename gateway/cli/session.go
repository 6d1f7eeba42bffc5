package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Astemirdum/bookhub/gateway/internal/model"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *App) loginCmd() *cobra.Command {
	var in model.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the library",
		Long: `Authenticate against the library API and keep the session.

The password is prompted for without echo unless --password is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if in.Password == "" {
				password, err := a.readPassword()
				if err != nil {
					return errors.Wrap(err, "read password")
				}
				in.Password = password
			}
			if err := a.validator.Validate(&in); err != nil {
				return errors.Wrap(err, "login")
			}
			resp, err := a.api.Login(ctx, in)
			if err != nil {
				return a.fail(ctx, err)
			}
			s, err := a.sessions.Begin(resp)
			if err != nil {
				return a.fail(ctx, err)
			}
			name := s.User.Name
			if name == "" {
				name = s.User.Email
			}
			notify.Dispatch(ctx, a.notifier, notify.Success(fmt.Sprintf("Logged in as %s (%s)", name, s.Role())))
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Account email (required)")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.End(); err != nil {
				return errors.Wrap(err, "logout")
			}
			notify.Dispatch(cmd.Context(), a.notifier, notify.Info("Logged out"))
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user and the resolved role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.authorize(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:  %s\n", orDash(s.User.Name))
			fmt.Fprintf(out, "Email: %s\n", orDash(s.User.Email))
			fmt.Fprintf(out, "Role:  %s\n", s.Role())
			return nil
		},
	}
}

// readPasswordFrom reads without echo from a terminal, or a plain line when
// stdin is piped.
func readPasswordFrom(in *os.File, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		bytePassword, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
