package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user, err := app.auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new volunteer account",
	Long: `Create a new volunteer account.

Registration does not log you in; run "ecoaction login" afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user, err := app.auth.Register(cmd.Context(), name, email, password)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Account created for %s <%s>\n", user.Name, user.Email)
		fmt.Println("Run \"ecoaction login\" to sign in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user, _, err := app.sessions.Current()
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("password", "", "Account password")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
}
