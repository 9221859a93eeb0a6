package cmd

import (
	"fmt"
	"io"

	"github.com/sarchlab/eeprom/tracing"
	"github.com/spf13/cobra"
)

var (
	traceQuery     tracing.TaskQuery
	traceLocations bool
)

var traceCmd = &cobra.Command{
	Use:   "trace FILE",
	Short: "List the tasks recorded in a trace database.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := tracing.NewSQLiteTraceReader(args[0])
		if err := reader.Init(); err != nil {
			return err
		}
		defer reader.Close()

		if traceLocations {
			locations, err := reader.ListLocations()
			if err != nil {
				return err
			}

			for _, l := range locations {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}

			return nil
		}

		tasks, err := reader.ListTasks(traceQuery)
		if err != nil {
			return err
		}

		writeTasks(cmd.OutOrStdout(), tasks)

		return nil
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceQuery.ID, "id", "", "only the task with this id")
	traceCmd.Flags().StringVar(&traceQuery.Where, "where", "",
		"only tasks of this controller")
	traceCmd.Flags().StringVar(&traceQuery.What, "what", "",
		"only tasks of this operation, e.g. read or page_write")
	traceCmd.Flags().BoolVar(&traceQuery.FailedOnly, "failed", false,
		"only failed tasks")
	traceCmd.Flags().BoolVar(&traceLocations, "locations", false,
		"list the controllers found in the trace instead of tasks")

	rootCmd.AddCommand(traceCmd)
}

func writeTasks(w io.Writer, tasks []tracing.Task) {
	for _, t := range tasks {
		fmt.Fprintf(w, "%s %s %s %s 0x%04x %d %s",
			t.ID, t.Where, t.Kind, t.What, t.Address, t.ByteSize, t.Duration())

		if t.Failed() {
			fmt.Fprintf(w, " %s", t.Error)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d tasks\n", len(tasks))
}
