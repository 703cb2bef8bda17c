package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"portalphys/internal/config"
	"portalphys/internal/scenario"
	"portalphys/internal/viz"
)

var (
	configFile string
	ticks      int
	plotBody   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "portalsim",
		Short:        "headless portal physics scenarios",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and check its expectations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "ticks to simulate (0 uses the scenario's own)")
	runCmd.Flags().StringVar(&plotBody, "plot", "", "plot height and speed of a body")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenario.List() {
				file, err := scenario.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Printf("%-14s %s\n", name, file.Description)
			}
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [scenario]",
		Short: "step a scenario live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchScenario,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(runCmd, listCmd, watchCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func resolve(cfg *config.Config, args []string) (*scenario.File, error) {
	name := cfg.Scenario
	if len(args) > 0 {
		name = args[0]
	}
	return scenario.Resolve(name)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	file, err := resolve(cfg, args)
	if err != nil {
		return err
	}
	inst, err := file.Build(cfg.Physics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := ticks
	if n == 0 && file.Ticks == 0 {
		n = cfg.Ticks
	}
	result, err := scenario.NewRunner(cfg.SampleEvery).Run(ctx, inst, n)
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(result))
	if plotBody != "" {
		if plot := viz.Plot(result, plotBody); plot != "" {
			fmt.Println(plot)
		}
	}
	if !result.Passed() {
		return fmt.Errorf("scenario %s: %d expectations failed", file.Name, len(result.Failures))
	}
	return nil
}

func watchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	file, err := resolve(cfg, args)
	if err != nil {
		return err
	}
	monitor, err := viz.NewMonitor(file, cfg.Physics)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(monitor, tea.WithAltScreen()).Run()
	return err
}
