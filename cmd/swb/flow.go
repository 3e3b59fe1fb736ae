package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ombrelle/switchboard/internal/flow"
)

func newFlowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Flow management commands",
	}

	cmd.AddCommand(newFlowListCmd())
	cmd.AddCommand(newFlowShowCmd())
	cmd.AddCommand(newFlowDeleteCmd())
	return cmd
}

func newFlowListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlowList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runFlowList(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	flows, err := flow.List(gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(flows) == 0 {
		fmt.Fprintln(out, "No flows found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTEPS")
	for _, f := range flows {
		fmt.Fprintf(w, "%d\t%s\t%d\n", f.ID, f.Name, len(f.Steps))
	}
	w.Flush()
	return nil
}

func newFlowShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a flow's steps in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlowShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runFlowShow(cmd *cobra.Command, configPath, rawID string) error {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid flow id %q", rawID)
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	f, err := flow.Get(gormDB, uint(id))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Flow %d: %s\n\n", f.ID, f.Name)
	if len(f.Steps) == 0 {
		fmt.Fprintln(out, "No steps.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tCONDITION\tRESPONSE")
	for _, s := range f.Steps {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.Sequence, truncate(s.Condition, 30), truncate(s.Response, 50))
	}
	w.Flush()
	return nil
}

func newFlowDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flow and its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlowDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runFlowDelete(cmd *cobra.Command, configPath, rawID string) error {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid flow id %q", rawID)
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := flow.Delete(gormDB, uint(id)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted flow %d\n", id)
	return nil
}
