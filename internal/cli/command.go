package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCommandCmd создаёт группу команд для управления командами движка.
func NewCommandCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Manage engine commands",
	}

	cmd.AddCommand(
		newCommandSubmitCmd(clientFn, outputFn),
		newCommandListCmd(clientFn, outputFn),
		newCommandShowCmd(clientFn, outputFn),
		newCommandConfirmCmd(clientFn, outputFn),
		newCommandCancelCmd(clientFn, outputFn),
	)

	return cmd
}

// NewQueueCmd создаёт группу команд для просмотра очереди.
func NewQueueCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the execution queue",
	}

	cmd.AddCommand(newQueueStatsCmd(clientFn, outputFn))

	return cmd
}

func newCommandSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var priority int
	var id string

	cmd := &cobra.Command{
		Use:   "submit TEXT",
		Short: "Submit a command, e.g. \"buy 10 AAPL at 190\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			command, err := client.SubmitCommand(SubmitCommandRequest{
				ID:       id,
				Text:     args[0],
				Priority: priority,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Command submitted: %s (%s)", command.ID, command.Status))
			out.Print(
				[]string{"ID", "TEXT", "STATUS", "PRIORITY", "CREATED"},
				[][]string{{command.ID, command.Text, command.Status, strconv.Itoa(command.Priority), command.CreatedAt}},
				command,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&priority, "priority", 0, "Queue priority (engine default if not specified)")
	cmd.Flags().StringVar(&id, "id", "", "Client-supplied command ID for idempotent submission")

	return cmd
}

func newCommandListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var source string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			commands, err := client.ListCommands(ListCommandsOpts{
				Status: status,
				Source: source,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "TEXT", "STATUS", "SOURCE", "CREATED"}
			rows := make([][]string, len(commands))
			for i, c := range commands {
				rows[i] = []string{c.ID, c.Text, c.Status, c.Source, c.CreatedAt}
			}

			out.Print(headers, rows, commands)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (RECEIVED, EXECUTING, SETTLED, FAILED, CANCELLED, ...)")
	cmd.Flags().StringVar(&source, "source", "", "Filter by source (api, cli, schedule, mq)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newCommandShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show command details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			command, err := client.GetCommand(args[0])
			if err != nil {
				return err
			}

			var failure string
			if command.Failure != nil {
				failure = command.Failure.Kind + ": " + command.Failure.Reason
			}

			out.Print(
				[]string{"ID", "TEXT", "STATUS", "FAILURE", "CREATED", "FINISHED"},
				[][]string{{command.ID, command.Text, command.Status, failure, command.CreatedAt, command.FinishedAt}},
				command,
			)
			return nil
		},
	}
}

func newCommandConfirmCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm ID",
		Short: "Confirm a command awaiting confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			command, err := client.ConfirmCommand(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Command confirmed: %s (%s)", command.ID, command.Status))
			return nil
		},
	}
}

func newCommandCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			command, err := client.CancelCommand(args[0])
			if err != nil {
				return err
			}

			if command.CancelRequested && command.Status == "EXECUTING" {
				out.Success(fmt.Sprintf("Cancellation requested for %s, outcome pending", command.ID))
				return nil
			}

			out.Success(fmt.Sprintf("Command cancelled: %s", command.ID))
			return nil
		},
	}
}

func newQueueStatsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			stats, err := client.QueueStats()
			if err != nil {
				return err
			}

			out.Print(
				[]string{"SIZE", "AVG_PRIORITY", "OLDEST_AGE_MS", "PROCESSING"},
				[][]string{{
					strconv.Itoa(stats.Size),
					fmt.Sprintf("%.1f", stats.AveragePriority),
					strconv.FormatInt(stats.OldestAgeMs, 10),
					strconv.FormatBool(stats.ProcessingActive),
				}},
				stats,
			)
			return nil
		},
	}
}
