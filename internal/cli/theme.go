package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"news-reader/internal/theme"
)

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func newThemeCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the saved theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(root)
			if err != nil {
				return err
			}
			defer e.Close()
			fmt.Fprintln(cmd.OutOrStdout(), themeName(theme.Load(cmd.Context(), e.store)))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(root)
			if err != nil {
				return err
			}
			defer e.Close()
			dark, err := theme.Toggle(cmd.Context(), e.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), themeName(dark))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set light|dark",
		Short:     "Set the theme",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"light", "dark"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(root)
			if err != nil {
				return err
			}
			defer e.Close()
			dark := args[0] == "dark"
			if err := theme.Save(cmd.Context(), e.store, dark); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), themeName(dark))
			return nil
		},
	})

	return cmd
}
