package cli

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSettingsCommand(e *env) *cobra.Command {
	sc := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := e.settings
			fprintf(out, "installation: %s\n", st.InstallationID)
			fprintf(out, "page-size:    %d\n", st.PageSize)
			fprintf(out, "queue-window: %d\n", st.QueueWindow)
			fprintf(out, "last-source:  %s\n", st.LastSource)
			fprintf(out, "logs:         %s\n", onOff(st.LocalLogsEnabled))
			return nil
		},
	}

	positive := func(arg string) (int, error) {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return 0, errors.Errorf("expecting a positive number, got %q", arg)
		}
		return n, nil
	}

	sc.AddCommand(&cobra.Command{
		Use:   "page-size <n>",
		Short: "Set the default browse page size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := positive(args[0])
			if err != nil {
				return err
			}
			e.settings.PageSize = n
			return e.settings.Save(e.cfg.SettingsPath())
		},
	})

	sc.AddCommand(&cobra.Command{
		Use:   "queue-window <n>",
		Short: "Set how many queue entries are shown around the current track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := positive(args[0])
			if err != nil {
				return err
			}
			e.settings.QueueWindow = n
			return e.settings.Save(e.cfg.SettingsPath())
		},
	})

	sc.AddCommand(&cobra.Command{
		Use:   "logs",
		Short: "Toggle writing the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.settings.LocalLogsEnabled = !e.settings.LocalLogsEnabled
			if err := e.settings.Save(e.cfg.SettingsPath()); err != nil {
				return err
			}
			fprintf(cmd.OutOrStdout(), "Logs: %s\n", onOff(e.settings.LocalLogsEnabled))
			return nil
		},
	})
	return sc
}
