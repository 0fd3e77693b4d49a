package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/service"
)

func createAdminCmd(e *env) *cobra.Command {
	var email, password, name string

	c := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an account with the admin role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, a, err := e.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			session, err := a.Auth.SignUp(ctx, service.SignUpInput{
				Email:    email,
				Password: password,
				Name:     name,
				Role:     domain.RoleAdmin,
			})
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(e.out, "created admin %s (%s)\n", session.Email, session.UserID)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "admin email (required)")
	c.Flags().StringVar(&password, "password", "", "admin password (required)")
	c.Flags().StringVar(&name, "name", "Administrator", "display name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
