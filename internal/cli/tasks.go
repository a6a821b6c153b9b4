package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"content-planner/internal/calendar"
	"content-planner/internal/editor"
	"content-planner/internal/model"
)

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every task, earliest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			return calendar.List(a.Out, s.Tasks(), a.color())
		},
	}
}

func (a *App) monthCmd() *cobra.Command {
	var maxPerDay int
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month grid (current month by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := model.DateOf(a.Now())
			m := calendar.MonthOf(today, a.weekStart())
			if len(args) == 1 {
				var err error
				if m, err = calendar.ParseMonth(args[0], a.weekStart()); err != nil {
					return err
				}
			}

			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			return calendar.Render(a.Out, m, calendar.Events(s.Tasks()), calendar.RenderOptions{
				Color:     a.color(),
				MaxPerDay: maxPerDay,
				Today:     today,
			})
		},
	}
	cmd.Flags().IntVarP(&maxPerDay, "max", "n", 3, "titles listed per day")
	return cmd
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			t, ok := s.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", editor.ErrNoTask, args[0])
			}
			return calendar.Detail(a.Out, t, a.color())
		},
	}
}

func (a *App) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <YYYY-MM-DD> [title...]",
		Short: "Create a task on a day; asks for the title when none is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := model.ParseDate(args[0])
			if err != nil {
				return err
			}

			var p editor.Prompter = editor.NewLinePrompter(a.In, a.Out)
			if len(args) > 1 {
				p = editor.Answer(strings.Join(args[1:], " "))
			}

			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			t, err := editor.New(s).CreateOn(cmd.Context(), day, p)
			if errors.Is(err, editor.ErrCancelled) {
				a.notify("Cancelled.")
				return nil
			}
			if err != nil {
				a.fail("Failed to create task!")
				return err
			}
			a.notify("Task created!")
			fmt.Fprintln(a.Out, t.ID)
			return nil
		},
	}
}

func (a *App) editCmd() *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; without --set every field is asked for in turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			ed := editor.New(s)
			d, err := ed.Open(args[0])
			if err != nil {
				return err
			}

			if len(sets) > 0 {
				err = applySets(d, sets)
			} else {
				err = a.promptFields(d)
			}
			if errors.Is(err, editor.ErrCancelled) {
				a.notify("Cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			if !d.Dirty() {
				a.notify("Nothing to save.")
				return nil
			}

			t, err := ed.Save(cmd.Context(), d)
			if err != nil {
				a.fail("Failed to update task!")
				return err
			}
			a.notify("Task updated successfully!")
			return calendar.Detail(a.Out, t, a.color())
		},
	}
	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "field=value, repeatable (e.g. --set status=Approved)")
	return cmd
}

func applySets(d *editor.Draft, sets []string) error {
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: want field=value", kv)
		}
		if err := d.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// promptFields walks the editable fields. An empty answer keeps the current
// value; end of input stops and keeps what was entered so far.
func (a *App) promptFields(d *editor.Draft) error {
	p := editor.NewLinePrompter(a.In, a.Out)
	for _, f := range editor.Fields {
		cur, _ := d.Get(f.Key)
		msg := fmt.Sprintf("%s [%s]", f.Label, cur)
		if len(f.Options) > 0 {
			msg = fmt.Sprintf("%s (%s) [%s]", f.Label, strings.Join(f.Options, "/"), cur)
		}
		for {
			v, err := p.Prompt(msg)
			if errors.Is(err, editor.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			if v == "" || v == cur {
				break
			}
			if err := d.Set(f.Key, v); err != nil {
				fmt.Fprintln(a.ErrOut, err)
				continue
			}
			break
		}
	}
	return nil
}

func (a *App) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}

			var c editor.Confirmer = editor.NewLinePrompter(a.In, a.Out)
			if yes {
				c = editor.AlwaysYes
			}
			err = editor.New(s).Delete(cmd.Context(), args[0], c)
			if errors.Is(err, editor.ErrCancelled) {
				a.notify("Cancelled.")
				return nil
			}
			if err != nil {
				a.fail("Failed to delete task!")
				return err
			}
			a.notify("Task deleted successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
