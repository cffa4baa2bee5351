package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "wordlewatch",
		Short:         "Определяет время решения Wordle по записи экрана",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env не обязателен, DB_* могут прийти из окружения
			_ = godotenv.Load()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "путь к config.yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "выводить DEBUG сообщения")

	rootCmd.AddCommand(newAnalyzeCmd(), newCalibrateCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
