package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var openBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the monitor until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		port := cfg.MonitorPort
		cfg.MonitorPort = 0

		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		url := s.startMonitor(port)
		fmt.Fprintf(cmd.OutOrStdout(), "serving %s\n", url)

		if openBrowser {
			if err := browser.OpenURL(url); err != nil {
				s.log.Error(err, "cannot open browser")
			}
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowser, "open", false,
		"open the monitor in a web browser")

	rootCmd.AddCommand(serveCmd)
}
