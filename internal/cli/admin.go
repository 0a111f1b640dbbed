package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAdminCommand creates the admin command group.
func NewAdminCommand(load ConfigLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newCreateUserCommand(load))
	cmd.AddCommand(newSetProgressCommand(load))
	return cmd
}

func newCreateUserCommand(load ConfigLoader) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create-user EMAIL",
		Short: "Create an admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			a, err := openLocal(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Auth().CreateUser(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new account")

	return cmd
}

func newSetProgressCommand(load ConfigLoader) *cobra.Command {
	var count int64

	cmd := &cobra.Command{
		Use:   "set-progress",
		Short: "Set the number of thumbnails in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openLocal(cmd.Context(), load)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Portfolio().SetProgress(cmd.Context(), count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d in progress: %s\n", p.ThumbnailsInProgress, p.Estimate.TimeLabel)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&count, "count", "n", 0, "Thumbnails in progress")

	return cmd
}
