package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"vault/internal/domain/services"
	"vault/internal/repository/postgres"
	"vault/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword
var readPassword = term.ReadPassword

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newUserCreateCommand())
	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var email, username string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			password, err := promptPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			env, err := openEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			repos := service.PostgresRepositories(&postgres.RepositoryConfig{
				Pool:   env.pool,
				Tables: env.tables,
				Logger: env.logger,
			})
			svc, err := service.SetupServices(env.cfg, repos, env.logger)
			if err != nil {
				return err
			}

			return createUser(ctx, svc.Auth, email, username, password, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the new user")
	cmd.Flags().StringVar(&username, "username", "", "Username of the new user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// promptPassword reads the password twice from the terminal without echo
func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(w, "Confirm password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if !bytes.Equal(first, second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func createUser(ctx context.Context, auth services.AuthService, email, username, password string, out io.Writer) error {
	user, _, err := auth.Register(ctx, &services.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "created user %s (%s) id=%s\n", user.Username, user.Email, user.ID)
	return nil
}
