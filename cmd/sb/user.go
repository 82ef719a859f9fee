package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/shiftboard/internal/roster"
	"golang.org/x/term"
)

// errNoPassword is returned when no admin password is configured and stdin
// cannot be prompted.
var errNoPassword = errors.New("admin password is required: set admin.password or run from a terminal")

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(newUserCreateAdminCmd())
	return cmd
}

func newUserCreateAdminCmd() *cobra.Command {
	var (
		configPath string
		sapID      string
		name       string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long: `Creates an admin user. Planners, team leaders and members are created
through the admin API; admins can only be created here.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreateAdmin(cmd, configPath, sapID, name, password)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to shiftboard config file")
	cmd.Flags().StringVar(&sapID, "sap-id", "", "SAP id of the new admin (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.MarkFlagRequired("sap-id")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runUserCreateAdmin(cmd *cobra.Command, configPath, sapID, name, password string) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	password, err = adminPassword(cmd, password)
	if err != nil {
		return err
	}
	created, err := roster.SeedAdmin(gormDB, sapID, name, password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if !created {
		fmt.Fprintf(out, "Admin %s already exists\n", sapID)
		return nil
	}
	fmt.Fprintf(out, "Created admin %s (%s)\n", sapID, name)
	return nil
}

// adminPassword returns given when set, otherwise prompts on the terminal.
func adminPassword(cmd *cobra.Command, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return "", errNoPassword
	}
	fmt.Fprint(cmd.OutOrStdout(), "Admin password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return "", errNoPassword
	}
	return string(raw), nil
}
