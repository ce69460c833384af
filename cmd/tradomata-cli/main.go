// Tradomata CLI — инструмент командной строки для работы
// с движком торговых команд через HTTP API.
//
// Использование:
//
//	tradomata [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	command   Отправка, подтверждение и отмена команд
//	queue     Статистика очереди исполнения
//	schedule  Управление расписаниями
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Tradomata/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "tradomata",
		Short:         "Tradomata CLI — trading assistant command engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("TRADOMATA_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewCommandCmd(clientFn, outputFn),
		cli.NewQueueCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
