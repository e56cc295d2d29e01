package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopease/internal/server"
)

var (
	adminNameFlag     string
	adminEmailFlag    string
	adminPasswordFlag string
)

// user:admin creates an administrator, or promotes an existing account.
var userAdminCmd = &cobra.Command{
	Use:   "user:admin",
	Short: "Create or promote an administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmailFlag == "" {
			return errors.New("--email is required")
		}
		if adminPasswordFlag != "" && len(adminPasswordFlag) < 6 {
			return errors.New("--password must be at least 6 characters")
		}

		ctx := context.Background()
		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		created, err := app.Services.Users.EnsureAdmin(ctx, adminNameFlag, adminEmailFlag, adminPasswordFlag)
		if err != nil {
			return err
		}
		if created {
			fmt.Println("Administrator created:", adminEmailFlag)
		} else {
			fmt.Println("Administrator ready:", adminEmailFlag)
		}
		return nil
	},
}

func init() {
	userAdminCmd.Flags().StringVar(&adminNameFlag, "name", "Administrator", "Display name")
	userAdminCmd.Flags().StringVar(&adminEmailFlag, "email", "", "Login email")
	userAdminCmd.Flags().StringVar(&adminPasswordFlag, "password", "", "Password for a new account (min 6 chars)")
}
