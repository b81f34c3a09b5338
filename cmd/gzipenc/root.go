package main

import (
	"github.com/nfam/gzipenc/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "gzipenc",
		Short:         "Encode and serve gzip response bodies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "gzipenc.json", "JSON configuration file")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env", []string{".env"}, "KEY=value files loaded into the environment")

	cmd.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newServeCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	if err := config.LoadEnv(o.envFiles...); err != nil {
		return nil, err
	}
	return config.Load(o.configPath)
}
