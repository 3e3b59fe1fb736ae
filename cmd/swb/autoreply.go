package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/ombrelle/switchboard/internal/autoreply"
	"github.com/ombrelle/switchboard/internal/store"
)

func newAutoReplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoreply",
		Short: "Auto-reply rule management commands",
	}

	cmd.AddCommand(newAutoReplyListCmd())
	cmd.AddCommand(newAutoReplyAddCmd())
	cmd.AddCommand(newAutoReplyDeleteCmd())
	cmd.AddCommand(newAutoReplyTestCmd())
	return cmd
}

func newAutoReplyListCmd() *cobra.Command {
	var (
		configPath string
		tag        string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List auto-reply rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutoReplyList(cmd, configPath, tag)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by department tag")
	return cmd
}

func runAutoReplyList(cmd *cobra.Command, configPath, tag string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	rules, err := store.Rules(gormDB, tag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintln(out, "No auto-reply rules found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTAG\tHOURS\tREPLY")
	for _, r := range rules {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Tag, r.Hours, truncate(r.Reply, 50))
	}
	w.Flush()
	return nil
}

func newAutoReplyAddCmd() *cobra.Command {
	var (
		configPath string
		tag        string
		hoursSpec  string
		reply      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an auto-reply rule",
		Long: `Adds a rule that fires when a message arrives inside the rule's
active window. Hours use HH:MM-HH:MM and may wrap past midnight
(22:00-06:00 covers late night and early morning).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutoReplyAdd(cmd, configPath, tag, hoursSpec, reply)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&tag, "tag", "", "department tag (required)")
	cmd.Flags().StringVar(&hoursSpec, "hours", "", "active window, HH:MM-HH:MM (required)")
	cmd.Flags().StringVar(&reply, "reply", "", "reply text (required)")
	cmd.MarkFlagRequired("tag")
	cmd.MarkFlagRequired("hours")
	cmd.MarkFlagRequired("reply")
	return cmd
}

func runAutoReplyAdd(cmd *cobra.Command, configPath, tag, hoursSpec, reply string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	rule, err := store.CreateRule(gormDB, tag, hoursSpec, reply)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created rule %d for %s (%s)\n", rule.ID, rule.Tag, rule.Hours)
	return nil
}

func newAutoReplyDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an auto-reply rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutoReplyDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runAutoReplyDelete(cmd *cobra.Command, configPath, rawID string) error {
	var id uint
	if _, err := fmt.Sscanf(rawID, "%d", &id); err != nil {
		return fmt.Errorf("invalid rule id %q", rawID)
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := store.DeleteRule(gormDB, id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %d\n", id)
	return nil
}

func newAutoReplyTestCmd() *cobra.Command {
	var (
		configPath string
		tag        string
		at         string
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Dry-run the rule matcher",
		Long:  "Reports which rule (if any) would fire for a tag at a given instant.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutoReplyTest(cmd, configPath, tag, at)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&tag, "tag", "", "department tag (required)")
	cmd.Flags().StringVar(&at, "at", "", "instant to test, RFC 3339 (default now)")
	cmd.MarkFlagRequired("tag")
	return cmd
}

func runAutoReplyTest(cmd *cobra.Command, configPath, tag, at string) error {
	instant := time.Now()
	if at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		instant = parsed
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	rules, err := store.Rules(gormDB, tag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rule := autoreply.Match(rules, tag, instant)
	if rule == nil {
		fmt.Fprintf(out, "No rule fires for %s at %s\n", tag, instant.Format("15:04"))
		return nil
	}
	fmt.Fprintf(out, "Rule %d fires (%s): %s\n", rule.ID, rule.Hours, rule.Reply)
	return nil
}
