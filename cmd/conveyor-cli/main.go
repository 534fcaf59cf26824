// Conveyor CLI — инструмент командной строки координатора.
//
// Использование:
//
//	conveyor [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	report   Отчёты: usage, audit, alerts
//	submit   Публикация батча задач из YAML-файла
//
// Подключения берутся из окружения: DB_URL (Postgres), AMQP_URL
// (RabbitMQ).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Conveyor/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "conveyor",
		Short:         "Conveyor CLI — content pipeline coordinator tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewReportCmd(outputFn),
		cli.NewSubmitCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
