package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	lua "github.com/yuin/gopher-lua"

	"github.com/lualens/lualens/internal/profile"
	"github.com/lualens/lualens/internal/profiler"
	"github.com/lualens/lualens/internal/store"
)

var (
	profileJSON bool
	profileSave bool
)

var profileCmd = &cobra.Command{
	Use:   "profile SCRIPT FUNCTION [args...]",
	Short: "Profile a function defined by a Lua script",
	Long: `Load a Lua script, instrument every reachable function, call the
named function with the given string arguments, and print the timing
report.

The function name may be a dotted path into the globals, e.g.
"utils.process". Use --save to persist the session to the store.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, entry := args[0], args[1]
		cfg := GetConfig()

		L := lua.NewState()
		defer L.Close()

		if err := L.DoFile(script); err != nil {
			return fmt.Errorf("loading %s: %w", script, err)
		}

		p := profiler.New()
		p.SetDenyPaths(cfg.DenyPaths())

		startedAt := time.Now()
		if err := p.Start(L, nil, nil, nil); err != nil {
			return fmt.Errorf("starting profiler: %w", err)
		}

		callErr := callEntry(L, entry, args[2:])
		p.Stop()
		if callErr != nil {
			return fmt.Errorf("calling %s: %w", entry, callErr)
		}

		rep := p.GenerateReport()
		if err := printReport(rep); err != nil {
			return err
		}

		if profileSave {
			st, err := store.Open(cfg.Store.Dir)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			id, err := st.SaveSession(&store.Session{
				Script:    script,
				Entry:     entry,
				StartedAt: startedAt,
			}, rep)
			if err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			log.Info().Int64("session", int64(id)).Str("db", st.DBPath()).Msg("session saved")
		}
		return nil
	},
}

// callEntry resolves a dotted function path in the globals and calls it
// with the given arguments passed as strings.
func callEntry(L *lua.LState, entry string, args []string) error {
	var v lua.LValue = L.Get(lua.GlobalsIndex)
	for _, key := range strings.Split(entry, ".") {
		if v == lua.LNil {
			return fmt.Errorf("no value at %q", entry)
		}
		v = L.GetTable(v, lua.LString(key))
	}
	if v.Type() != lua.LTFunction {
		return fmt.Errorf("%q is not a function", entry)
	}

	callArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		callArgs[i] = lua.LString(a)
	}
	return L.CallByParam(lua.P{
		Fn:      v,
		NRet:    0,
		Protect: true,
	}, callArgs...)
}

func printReport(rep *profile.Report) error {
	if profileJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	profile.WriteText(os.Stdout, rep)
	return nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "print the report as JSON")
	profileCmd.Flags().BoolVar(&profileSave, "save", false, "persist the session to the store")
}
