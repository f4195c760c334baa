package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// lifecycleStore is the archive, restore and delete surface shared by
// every entity store.
type lifecycleStore interface {
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// lifecycleCmds builds the archive, restore and delete subcommands for kind.
func (a *app) lifecycleCmds(kind types.Kind, store func(types.Board) lifecycleStore) []*cobra.Command {
	verbs := []struct {
		use, short, done string
		call             func(lifecycleStore, context.Context, string) error
	}{
		{"archive", "Archive a %s and its descendants", "archived", lifecycleStore.Archive},
		{"restore", "Restore an archived %s", "restored", lifecycleStore.Restore},
		{"delete", "Permanently delete a %s and its descendants", "deleted", lifecycleStore.Delete},
	}

	cmds := make([]*cobra.Command, 0, len(verbs))
	for _, v := range verbs {
		cmds = append(cmds, &cobra.Command{
			Use:   v.use + " <id>",
			Short: fmt.Sprintf(v.short, kind),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(s *session) error {
					if err := v.call(store(s.board), cmd.Context(), args[0]); err != nil {
						return fmt.Errorf("%s %s: %w", v.use, kind, err)
					}
					return s.out.done(v.done, kind, args[0])
				})
			},
		})
	}
	return cmds
}

// indexFlag returns a pointer to the value of the named int flag, or nil
// when the flag was not given.
func indexFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}

// parseIndex parses a positional slot argument.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid index %q", types.ErrValidation, arg)
	}
	return n, nil
}

// dateFlag parses the named date flag in local time. It returns nil when
// the flag was not given.
func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	t, err := types.ParseUserTime(raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}

// durationFlag parses the named Go duration flag. It returns nil when the
// flag was not given.
func durationFlag(cmd *cobra.Command, name string) (*time.Duration, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s: invalid duration %q", types.ErrValidation, name, raw)
	}
	return &d, nil
}

// stringFlag returns a pointer to the named string flag value when it was
// given.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// boolFlag returns a pointer to the named bool flag value when it was
// given.
func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}
