package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lualens/lualens/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored profiling sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		st, err := store.Open(cfg.Store.Dir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		sessions, err := st.ListSessions()
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet. Run 'lualens profile --save' first.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSCRIPT\tFUNCTION\tSTARTED\tTOTAL")
		for _, sess := range sessions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.6fs\n",
				sess.ID, sess.Script, sess.Entry,
				sess.StartedAt.Local().Format(time.DateTime),
				sess.TotalTime)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
