package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"content-planner/internal/calendar"
	"content-planner/internal/config"
	"content-planner/internal/export"
	"content-planner/internal/gcal"
	"content-planner/internal/model"
)

func (a *App) exportCmd() *cobra.Command {
	var format, month, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a month of tasks as json, csv, yaml or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			m, err := a.monthFlag(month)
			if err != nil {
				return err
			}

			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}

			write := func(w io.Writer) error {
				if err := export.Write(w, f, m, s.Tasks()); err != nil {
					return fmt.Errorf("export %s: %w", f, err)
				}
				return nil
			}

			if output == "" || output == "-" {
				if f == export.PDF {
					return fmt.Errorf("pdf export needs --output")
				}
				return write(a.Out)
			}
			if err := exportToFile(createFile, output, write); err != nil {
				return err
			}
			fmt.Fprintf(a.ErrOut, "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json | csv | yaml | pdf")
	cmd.Flags().StringVarP(&month, "month", "m", "", "month to export, YYYY-MM (default current)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func createFile(name string) (io.WriteCloser, error) { return os.Create(name) }

// exportToFile writes through write into a file from create. A failed close
// fails the export, since buffered bytes may not have reached the disk.
func exportToFile(create func(string) (io.WriteCloser, error), name string, write func(io.Writer) error) error {
	file, err := create(name)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func (a *App) monthFlag(v string) (calendar.Month, error) {
	if v == "" {
		return calendar.MonthOf(model.DateOf(a.Now()), a.weekStart()), nil
	}
	return calendar.ParseMonth(v, a.weekStart())
}

func (a *App) gcalSyncCmd() *cobra.Command {
	var name, month string
	cmd := &cobra.Command{
		Use:   "gcal-sync",
		Short: "Mirror dated tasks into a Google calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if name == "" {
				name = a.cfg.Google.Calendar
			}

			s, err := a.loadStore(ctx)
			if err != nil {
				return err
			}
			tasks := s.Tasks()
			if month != "" {
				m, err := a.monthFlag(month)
				if err != nil {
					return err
				}
				tasks = export.InMonth(tasks, m)
			}

			oauthCfg, err := gcal.LoadConfig(a.cfg.Google.CredentialsFile)
			if err != nil {
				return err
			}
			httpClient, err := gcal.HTTPClient(ctx, oauthCfg, a.cfg.Google.TokenFile, a.Out)
			if err != nil {
				return err
			}
			cal, err := gcal.Open(ctx, httpClient, name)
			if err != nil {
				return err
			}

			res, err := gcal.Sync(ctx, cal, tasks)
			fmt.Fprintf(a.Out, "Synced to %q: %s\n", name, res)
			if err != nil {
				a.fail("Some tasks failed to sync!")
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "calendar", "c", "", "Google calendar name (default from config)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "only sync this month, YYYY-MM")
	return cmd
}

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.ClientConfigPath()
			}
			if err := config.WriteClientDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Created %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *a.cfg
			if shown.Token != "" {
				shown.Token = "********"
			}
			enc := yaml.NewEncoder(a.Out)
			enc.SetIndent(2)
			if err := enc.Encode(shown); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}
