package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/shell/catalogsrc"
)

func newTemplatesCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the template catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			cat := catalogsrc.Load(cfg.Catalog.Path, logger)
			var templates []domain.Template
			if category != "" {
				templates = cat.ByCategory(category)
				if len(templates) == 0 {
					return fmt.Errorf("no templates in category %q (have %v)", category, cat.Categories())
				}
			} else {
				templates = cat.List()
			}

			fmt.Fprint(cmd.OutOrStdout(), renderTemplates(templates))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list templates in this category")
	return cmd
}
