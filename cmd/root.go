package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zping",
	Short: "A concurrent raw-socket host prober. ",
	Long: `Zping probes many hosts at once with hand-built ICMP Echo Request
frames sent over an AF_PACKET socket, correlating asynchronous replies
back to their originating requests.`,
	Version: "0.1.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		if debug {
			os.Setenv("ZPING_LOG_LEVEL", "development")
		} else {
			os.Setenv("ZPING_LOG_LEVEL", "production")
		}
	},
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "set debug log level")
	rootCmd.PersistentFlags().BoolP("help", "H", false, "help for this command")
	rootCmd.PersistentFlags().BoolP("version", "V", false, "version for zping")
	rootCmd.PersistentFlags().DurationP("timeout", "T", 0, "per-attempt reply deadline (default 5s)")
	rootCmd.PersistentFlags().StringP("interface", "i", "", "outgoing interface (default: first usable)")
	rootCmd.PersistentFlags().IntP("slots", "s", 0, "send-buffer pool size (default 100)")
	rootCmd.PersistentFlags().Float64P("rate", "R", 0, "global probes per second, 0 for unlimited")
	rootCmd.PersistentFlags().StringP("config", "C", "", "YAML config file")
	rootCmd.PersistentFlags().StringP("metrics-addr", "M", "", "expose Prometheus metrics on this address")
}
