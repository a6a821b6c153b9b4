package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"content-planner/internal/apiclient"
	"content-planner/internal/calendar"
	"content-planner/internal/config"
	"content-planner/internal/store"
)

var Version = "dev"

// App carries what every command needs.
type App struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	Now    func() time.Time

	configPath string
	baseURL    string
	noColor    bool
	cfg        *config.ClientConfig
}

// NewRootCmd builds the planner command tree.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &App{In: in, Out: out, ErrOut: errOut, Now: time.Now}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Content calendar for planned social media posts",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.ClientConfigPath()+")")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Remote Task API base URL")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable status colours")

	root.AddCommand(
		a.listCmd(),
		a.monthCmd(),
		a.showCmd(),
		a.addCmd(),
		a.editCmd(),
		a.deleteCmd(),
		a.exportCmd(),
		a.gcalSyncCmd(),
		a.configCmd(),
	)
	return root
}

func (a *App) loadConfig() error {
	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(a.baseURL, "/")
	}
	a.cfg = cfg
	return nil
}

func (a *App) color() bool { return a.cfg.Color && !a.noColor }

func (a *App) weekStart() time.Weekday {
	d, err := calendar.ParseWeekday(a.cfg.WeekStart)
	if err != nil {
		fmt.Fprintf(a.ErrOut, "[WARN] %v, using sunday\n", err)
		return time.Sunday
	}
	return d
}

func (a *App) client() *apiclient.Client {
	c := apiclient.New(a.cfg.BaseURL, a.cfg.Token, a.cfg.Timeout)
	c.AppVersion = Version
	return c
}

// loadStore builds a store and fills it from the server, the way the
// calendar does when it first opens.
func (a *App) loadStore(ctx context.Context) (*store.Store, error) {
	s := store.New(a.client(), store.WithLogger(log.New(a.ErrOut, "", 0)))
	if err := s.List(ctx); err != nil {
		a.fail("Failed to load tasks!")
		return nil, err
	}
	return s, nil
}

func (a *App) notify(msg string) { fmt.Fprintln(a.Out, msg) }

func (a *App) fail(msg string) { fmt.Fprintln(a.ErrOut, msg) }
