package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/lualens/lualens/internal/profile"
	"github.com/lualens/lualens/internal/store"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report SESSION_ID",
	Short: "Print the report of a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}

		cfg := GetConfig()
		st, err := store.Open(cfg.Store.Dir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		rep, err := st.GetReport(store.SessionID(id))
		if err != nil {
			return fmt.Errorf("loading session %d: %w", id, err)
		}

		if reportJSON {
			data, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling report: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}
		profile.WriteText(os.Stdout, rep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
}
