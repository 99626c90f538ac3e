package main

import (
	"fmt"
	"io"
	"os"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/explormate/explormate-chain/common/logging"
	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/explormate/explormate-chain/common/runtime"
	"github.com/explormate/explormate-chain/common/version"
	"github.com/explormate/explormate-chain/metrics"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// skipSetup marks commands that run without loading configuration.
const skipSetup = "explormate.skipSetup"

type CLI struct {
	configPath string
	envFile    string
	conf       *config.MainConfig
}

func NewRootCommand() *cobra.Command {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:   "explormate",
		Short: "Tooling for the ExplorMate travel marketplace",
		Long: fmt.Sprintf(`%s

Pins profiles, chat messages and media to IPFS through Pinata, and deploys and
exercises the ExplorMate marketplace contract.

%s
  explormate ipfs test
  explormate ipfs upload-file ./photo.jpg
  explormate ipfs url QmHash --gateway cloudflare
  explormate contract deploy --network sepolia`,
			bold("ExplorMate chain tooling"),
			bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return cli.initialize(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cli.conf == nil {
				return nil
			}
			return metrics.WriteTextfile(cli.conf.Metrics.Textfile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cli.configPath, "config", config.DefaultPath, "The path to the configuration file or directory")
	rootCmd.PersistentFlags().StringVar(&cli.envFile, "env-file", config.DefaultEnvFile, "A dotenv file to load before reading the environment")

	rootCmd.AddCommand(newIPFSCommand(cli))
	rootCmd.AddCommand(newContractCommand(cli))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func (cli *CLI) initialize(cmd *cobra.Command) error {
	configPath := cli.configPath
	// Override config path with config for Docker users
	if configEnv := os.Getenv(config.EnvConfigPath); configEnv != "" && !cmd.Flags().Changed("config") {
		configPath = configEnv
	}

	conf, err := config.Load(configPath, cli.envFile)
	if err != nil {
		return err
	}
	cli.conf = conf
	return runtime.RunStartupSequence(conf)
}

// requestContext starts the context for a single command invocation.
func (cli *CLI) requestContext(cmd *cobra.Command) rcontext.RequestContext {
	return rcontext.Wrap(cmd.Context(), logging.ForComponent(cmd.CommandPath()))
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version and exit",
		Annotations: map[string]string{skipSetup: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func printField(out io.Writer, label string, value interface{}) {
	_, _ = fmt.Fprintf(out, "%s %v\n", cyan(label), value)
}
