// Command shopease is the storefront binary: the API server plus the
// operational commands (migrations, seeding, workers, scheduler).
//
//	shopease serve
//	shopease migrate
//	shopease seed
//	shopease queue:work --workers 5
//	shopease schedule:run --once
//	shopease user:admin --email ops@example.com --password s3cret
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shopease",
	Short:         "ShopEase storefront API",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(scheduleRunCmd)

	rootCmd.AddCommand(userAdminCmd)
}
