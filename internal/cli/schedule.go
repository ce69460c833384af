package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewScheduleCmd создаёт группу команд для управления расписаниями.
func NewScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage command schedules",
	}

	cmd.AddCommand(
		newScheduleListCmd(clientFn, outputFn),
		newScheduleCreateCmd(clientFn, outputFn),
		newScheduleShowCmd(clientFn, outputFn),
		newScheduleDeleteCmd(clientFn, outputFn),
		newScheduleEnableCmd(clientFn, outputFn),
		newScheduleDisableCmd(clientFn, outputFn),
	)

	return cmd
}

func newScheduleListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedules, err := client.ListSchedules()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "COMMAND", "CRON", "INTERVAL", "ENABLED", "NEXT_DUE"}
			rows := make([][]string, len(schedules))
			for i, s := range schedules {
				interval := ""
				if s.IntervalSec > 0 {
					interval = strconv.Itoa(s.IntervalSec) + "s"
				}
				rows[i] = []string{s.ID, s.Name, s.CommandText, s.CronExpr, interval, strconv.FormatBool(s.Enabled), s.NextDueAt}
			}

			out.Print(headers, rows, schedules)
			return nil
		},
	}
}

func newScheduleCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var priority int
	var cronExpr string
	var intervalSec int
	var timezone string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "create COMMAND_TEXT",
		Short: "Create a schedule for a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedule, err := client.CreateSchedule(CreateScheduleRequest{
				Name:        name,
				CommandText: args[0],
				Priority:    priority,
				CronExpr:    cronExpr,
				IntervalSec: intervalSec,
				Timezone:    timezone,
				Enabled:     !disabled,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule created: %s", schedule.ID))
			out.Print(
				[]string{"ID", "NAME", "COMMAND", "NEXT_DUE"},
				[][]string{{schedule.ID, schedule.Name, schedule.CommandText, schedule.NextDueAt}},
				schedule,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Schedule name")
	cmd.Flags().IntVar(&priority, "priority", 0, "Queue priority for submitted commands")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression, e.g. \"0 9 * * 1-5\"")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Interval in seconds")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone (default: UTC)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create disabled")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newScheduleShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show schedule details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedule, err := client.GetSchedule(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "COMMAND", "CRON", "ENABLED", "NEXT_DUE", "LAST_COMMAND"},
				[][]string{{schedule.ID, schedule.Name, schedule.CommandText, schedule.CronExpr, strconv.FormatBool(schedule.Enabled), schedule.NextDueAt, schedule.LastCommandID}},
				schedule,
			)
			return nil
		},
	}
}

func newScheduleDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteSchedule(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule deleted: %s", args[0]))
			return nil
		},
	}
}

func newScheduleEnableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "enable ID",
		Short: "Enable a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedule, err := client.EnableSchedule(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule enabled: %s", schedule.ID))
			return nil
		},
	}
}

func newScheduleDisableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "disable ID",
		Short: "Disable a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			schedule, err := client.DisableSchedule(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule disabled: %s", schedule.ID))
			return nil
		},
	}
}
