package main

import (
	"github.com/spf13/cobra"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
)

func newRootCmd(cfg *configuration.ClientConfig) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "imgctl",
		Short:         "Upload, list and share images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	cmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "image service URL")
	cmd.PersistentFlags().StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "document store URL")

	cmd.AddCommand(
		newSignupCmd(cfg),
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg, &output),
		newPasswdCmd(cfg),
		newUploadCmd(cfg),
		newListCmd(cfg, &output),
		newRemoveCmd(cfg),
		newURLCmd(cfg),
		newStatsCmd(cfg, &output),
	)

	return cmd
}
