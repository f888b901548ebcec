package main

import (
	"fmt"

	"noet-be/internal/bootstrap"
	"noet-be/internal/config"
	"noet-be/internal/entity"
	"noet-be/internal/pkg/serverutils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newFixSortOrderCmd() *cobra.Command {
	var userId, kind string

	cmd := &cobra.Command{
		Use:   "fix-sortorder",
		Short: "Renumber sortOrder of a user's tags, notebooks or folders",
		Example: `
  noetctl fix-sortorder --user alice
  noetctl fix-sortorder --user alice --kind folders`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !serverutils.ValidUserId(userId) {
				return fmt.Errorf("invalid user id %q", userId)
			}
			kinds := entity.CollectionKinds
			if kind != "" {
				k, ok := entity.ParseCollectionKind(kind)
				if !ok {
					return fmt.Errorf("unknown kind %q (want tags, notebooks or folders)", kind)
				}
				kinds = []entity.CollectionKind{k}
			}

			container := bootstrap.NewContainer(config.Load())
			defer container.Close()

			for _, k := range kinds {
				n, err := container.CollectionService.Normalize(cmd.Context(), userId, k)
				if err != nil {
					return fmt.Errorf("%s: %w", k, err)
				}
				color.Green("%s: %d entries renumbered", k, n)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&userId, "user", "", "user id whose collections to repair")
	f.StringVar(&kind, "kind", "", "tags, notebooks or folders (default all)")
	cmd.MarkFlagRequired("user")
	return cmd
}
