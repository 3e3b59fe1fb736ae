package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ombrelle/switchboard/internal/conversation"
	"github.com/ombrelle/switchboard/internal/store"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat management commands",
	}

	cmd.AddCommand(newChatListCmd())
	cmd.AddCommand(newChatShowCmd())
	return cmd
}

func newChatListCmd() *cobra.Command {
	var (
		configPath string
		department string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chats, most recent first",
		Long:  "Lists every customer chat with its latest message preview and unread count.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatList(cmd, configPath, department)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().StringVar(&department, "department", "", "filter by department")
	return cmd
}

func runChatList(cmd *cobra.Command, configPath, department string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	customers, err := store.Customers(gormDB)
	if err != nil {
		return err
	}
	sessions, err := store.AllSessions(gormDB, department)
	if err != nil {
		return err
	}
	messages, err := store.AllMessages(gormDB)
	if err != nil {
		return err
	}

	rows := conversation.Chats(customers, sessions, messages)
	if department != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if r.Department == department {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No chats found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHONE\tNAME\tDEPT\tTICKET\tUNREAD\tLAST\tPREVIEW")
	for _, r := range rows {
		name := r.CustomerName
		if name == "" {
			name = "-"
		}
		ticket := r.OpenTicket
		if ticket == "" {
			ticket = "-"
		}
		dept := r.Department
		if dept == "" {
			dept = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Phone, truncate(name, 24), dept, truncate(ticket, 12),
			r.Unread, fmtMillis(r.LastTimestamp), truncate(r.LastPreview, 40))
	}
	w.Flush()
	return nil
}

func newChatShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <phone>",
		Short: "Show a customer's sessions and anomalies",
		Long: `Displays each session for the phone number along with unassigned
messages and messages that fall inside more than one session window.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runChatShow(cmd *cobra.Command, configPath, phone string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	customer, err := store.Customer(gormDB, phone)
	if err != nil {
		return err
	}
	sessions, err := store.SessionsForPhone(gormDB, phone)
	if err != nil {
		return err
	}
	messages, err := store.MessagesForPhone(gormDB, phone)
	if err != nil {
		return err
	}

	overview := conversation.BuildOverview(customer, sessions, messages)

	out := cmd.OutOrStdout()
	name := overview.CustomerName
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(out, "Chat with %s %s\n\n", phone, name)

	if len(overview.Sessions) == 0 {
		fmt.Fprintln(out, "No sessions.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TICKET\tDEPT\tSTART\tEND\tMSGS\tUNREAD")
		for _, s := range overview.Sessions {
			end := "open"
			if s.EndTS != nil {
				end = fmtMillis(*s.EndTS)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
				s.Ticket, s.Department, fmtMillis(s.StartTS), end, s.MessageCount, s.Unread)
		}
		w.Flush()
	}

	if len(overview.Unassigned) > 0 {
		fmt.Fprintf(out, "\n%d message(s) outside every session window:\n", len(overview.Unassigned))
		for _, m := range overview.Unassigned {
			fmt.Fprintf(out, "  [%s] %s\n", fmtMillis(m.Timestamp), truncate(m.Body, 60))
		}
	}
	if len(overview.Warnings) > 0 {
		fmt.Fprintf(out, "\n%d message(s) matched more than one session:\n", len(overview.Warnings))
		for _, a := range overview.Warnings {
			fmt.Fprintf(out, "  [%s] %s -> tickets %v\n",
				fmtMillis(a.Message.Timestamp), truncate(a.Message.Body, 40), a.Tickets)
		}
	}
	return nil
}
