package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/ombrelle/switchboard/internal/store"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionOpenCmd())
	cmd.AddCommand(newSessionCloseCmd())
	return cmd
}

func newSessionOpenCmd() *cobra.Command {
	var (
		configPath string
		department string
		customerID string
	)

	cmd := &cobra.Command{
		Use:   "open <phone>",
		Short: "Open a session for a phone number",
		Long:  "Opens a new ticketed session. Fails if the phone already has an open session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionOpen(cmd, configPath, args[0], department, customerID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&department, "department", "support", "department handling the session")
	cmd.Flags().StringVar(&customerID, "customer", "", "external customer ID")
	return cmd
}

func runSessionOpen(cmd *cobra.Command, configPath, phone, department, customerID string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	session, err := store.OpenSession(gormDB, phone, department, customerID, time.Now().UnixMilli())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Opened session %s for %s\n", session.Ticket, phone)
	fmt.Fprintf(out, "Department: %s\n", session.Department)
	return nil
}

func newSessionCloseCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "close <ticket>",
		Short: "Close an open session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionClose(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runSessionClose(cmd *cobra.Command, configPath, ticket string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := store.CloseSession(gormDB, ticket, time.Now().UnixMilli()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Closed session %s\n", ticket)
	return nil
}
