package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/light-bringer/syncable/internal/app/product/domain"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the products table on SQL stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Migrate(a.ctx(cmd)); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			printf(cmd, "schema ready (%s)\n", a.svc.Config.Store)
			return nil
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var id, name, description, category, price string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Insert a new product",
		Long: `Insert a new product. The product starts inactive.

Examples:
  syncctl create --name "Desk Lamp" --category home --price 19.99
  syncctl create --id lamp-1 --name Lamp --category home --price 39/2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			basePrice, err := domain.ParseMoney(price)
			if err != nil {
				return err
			}
			if id == "" {
				id = uuid.New().String()
			}

			p, err := domain.NewProduct(id, name, description, category, basePrice,
				a.svc.Clock, a.svc.Gateway, a.svc.TrackerOptions()...)
			if err != nil {
				return err
			}
			if err := a.svc.ProductRepo.Create(a.ctx(cmd), p); err != nil {
				return err
			}
			printf(cmd, "%s\n", p.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "product id (default: random UUID)")
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&description, "description", "", "product description")
	cmd.Flags().StringVar(&category, "category", "", "product category")
	cmd.Flags().StringVar(&price, "price", "", "base price, decimal or fraction")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "show <product-id>",
		Aliases: []string{"get"},
		Short:   "Print a stored product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.svc.ProductRepo.GetByID(a.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			printProduct(cmd, p)
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	var dryRun bool
	var revert []string

	cmd := &cobra.Command{
		Use:   "set <product-id> <field=value>...",
		Short: "Edit fields and sync the changes",
		Long: `Apply field edits to a stored product and persist only the fields that
changed. Editable fields: name, description, category, base_price, status.

Examples:
  syncctl set lamp-1 name="Desk Lamp" base_price=24.50
  syncctl set lamp-1 status=active --dry-run
  syncctl set lamp-1 name=Lamp category=office --revert category`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			p, err := a.svc.ProductRepo.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			for _, kv := range args[1:] {
				field, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("expected field=value, got %q", kv)
				}
				if err := p.SetField(field, value); err != nil {
					return fmt.Errorf("%s: %w", field, err)
				}
			}
			for _, field := range revert {
				p.Revert(field)
			}

			dirty := p.DirtyFields()
			if len(dirty) == 0 {
				printf(cmd, "no changes\n")
				return nil
			}
			printf(cmd, "changed: %s\n", strings.Join(dirty, ", "))

			if dryRun {
				p.RevertAll()
				printf(cmd, "dry run, reverted\n")
				return nil
			}

			ok, err := p.Sync(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %s was not updated", p.ID())
			}
			printf(cmd, "synced\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change, then revert")
	cmd.Flags().StringSliceVar(&revert, "revert", nil, "fields to restore before syncing")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a product from the store",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			p, err := a.svc.ProductRepo.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			removed, err := a.svc.ProductRepo.Remove(ctx, p)
			if err != nil {
				return err
			}
			if !removed {
				printf(cmd, "%s was already gone\n", p.ID())
				return nil
			}
			printf(cmd, "removed %s\n", p.ID())
			return nil
		},
	}
}

func printProduct(cmd *cobra.Command, p *domain.Product) {
	rows := map[string]string{
		domain.FieldID:          p.ID(),
		domain.FieldName:        p.Name(),
		domain.FieldDescription: p.Description(),
		domain.FieldCategory:    p.Category(),
		domain.FieldBasePrice:   p.BasePrice().String(),
		domain.FieldStatus:      string(p.Status()),
		domain.FieldCreatedAt:   p.CreatedAt().Format(time.RFC3339),
	}
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printf(cmd, "%-12s %s\n", k+":", rows[k])
	}
}
