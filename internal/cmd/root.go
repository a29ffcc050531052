// Package cmd implements the wfdsourced CLI commands using cobra.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "wfdsourced",
	Short:   "Wi-Fi Display source-side RTSP negotiation daemon",
	Version: "0.1.0",
	Long: `wfdsourced drives the source side of a Miracast/WFD session:
it runs the M1-M16 RTSP handshake against a connecting sink, negotiates
a shared audio/video configuration, and streams MPEG-TS over RTP once
negotiation completes.`,
}

// Execute adds all child commands to the root command and runs it. It is
// called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "wfdsourced.yaml",
		"path to the daemon's YAML configuration file")

	rootCmd.AddCommand(serveCmd)
}
