package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	serve := newServeCmd(&envFiles)
	root := &cobra.Command{
		Use:           "chartserver",
		Short:         "Render charts and upload text to S3-compatible storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newRenderCmd(&envFiles))
	return root
}
