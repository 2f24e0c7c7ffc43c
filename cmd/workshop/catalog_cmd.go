package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/garage/modules/workshop/domain/entities/catalog"
	"github.com/iota-uz/garage/modules/workshop/services"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"md"},
		Short:   "Manage brands, models, spare parts and concern solutions",
	}
	cmd.AddCommand(newCatalogBrandCmd())
	cmd.AddCommand(newCatalogModelCmd())
	cmd.AddCommand(newCatalogSpareCmd())
	cmd.AddCommand(newCatalogConcernCmd())
	return cmd
}

type brandView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoPath  string    `json:"logo_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type modelView struct {
	ID         string    `json:"id"`
	BrandID    string    `json:"brand_id"`
	BrandName  string    `json:"brand_name"`
	Name       string    `json:"name"`
	SamplePath string    `json:"sample_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type sparePartView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type concernSolutionView struct {
	ID        string    `json:"id"`
	Concern   string    `json:"concern"`
	Solution  string    `json:"solution"`
	CreatedAt time.Time `json:"created_at"`
}

func toBrandView(b catalog.CarBrand) brandView {
	return brandView{ID: b.ID.String(), Name: b.Name, LogoPath: b.LogoPath, CreatedAt: b.CreatedAt}
}

func toModelView(m catalog.CarModel) modelView {
	return modelView{
		ID:         m.ID.String(),
		BrandID:    m.BrandID.String(),
		BrandName:  m.BrandName,
		Name:       m.Name,
		SamplePath: m.SamplePath,
		CreatedAt:  m.CreatedAt,
	}
}

func toSparePartView(p catalog.SparePart) sparePartView {
	return sparePartView{ID: p.ID.String(), Name: p.Name, CreatedAt: p.CreatedAt}
}

func toConcernSolutionView(c catalog.ConcernSolution) concernSolutionView {
	return concernSolutionView{ID: c.ID.String(), Concern: c.Concern, Solution: c.Solution, CreatedAt: c.CreatedAt}
}

func parseEntryID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, withCode(exitUsage, fmt.Errorf("invalid id %q: %w", arg, err))
	}
	return id, nil
}

// catalogRun opens the environment and hands the master data service to fn.
func catalogRun(cmd *cobra.Command, fn func(ctx context.Context, svc *services.MasterDataService) (any, error)) error {
	ctx, env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	out, err := fn(ctx, env.module.MasterData)
	if err != nil {
		return err
	}
	return writeJSON(out)
}

func mapViews[T, V any](items []T, view func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}

func newCatalogBrandCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "brand", Short: "Car brands"}

	var dto catalog.BrandDTO
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				b, err := svc.CreateBrand(ctx, &dto)
				return toBrandView(b), err
			})
		},
	}
	brandFlags(create, &dto)

	var editDTO catalog.BrandDTO
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the name and logo of a brand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				b, err := svc.UpdateBrand(ctx, id, &editDTO)
				return toBrandView(b), err
			})
		},
	}
	brandFlags(edit, &editDTO)

	list := &cobra.Command{
		Use:   "list",
		Short: "List brands by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				brands, err := svc.ListBrands(ctx)
				return mapViews(brands, toBrandView), err
			})
		},
	}

	cmd.AddCommand(create, edit, list)
	return cmd
}

func brandFlags(cmd *cobra.Command, dto *catalog.BrandDTO) {
	cmd.Flags().StringVar(&dto.Name, "name", "", "Brand name")
	cmd.Flags().StringVar(&dto.LogoPath, "logo", "", "Path of the brand logo")
	_ = cmd.MarkFlagRequired("name")
}

func newCatalogModelCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "model", Short: "Car models"}

	var dto catalog.ModelDTO
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a model to a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				m, err := svc.CreateModel(ctx, &dto)
				return toModelView(m), err
			})
		},
	}
	modelFlags(create, &dto)

	var editDTO catalog.ModelDTO
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the brand, name and sample image of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				m, err := svc.UpdateModel(ctx, id, &editDTO)
				return toModelView(m), err
			})
		},
	}
	modelFlags(edit, &editDTO)

	var brand string
	list := &cobra.Command{
		Use:   "list",
		Short: "List models, optionally of one brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brandID := uuid.Nil
			if brand != "" {
				id, err := parseEntryID(brand)
				if err != nil {
					return err
				}
				brandID = id
			}
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				models, err := svc.ListModels(ctx, brandID)
				return mapViews(models, toModelView), err
			})
		},
	}
	list.Flags().StringVar(&brand, "brand", "", "Only models of this brand id")

	cmd.AddCommand(create, edit, list)
	return cmd
}

func modelFlags(cmd *cobra.Command, dto *catalog.ModelDTO) {
	cmd.Flags().StringVar(&dto.BrandID, "brand", "", "Brand id")
	cmd.Flags().StringVar(&dto.Name, "name", "", "Model name")
	cmd.Flags().StringVar(&dto.SamplePath, "sample", "", "Path of a sample image")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("name")
}

func newCatalogSpareCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "spare", Short: "Spare part names"}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a spare part",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				p, err := svc.CreateSparePart(ctx, &catalog.SparePartDTO{Name: name})
				return toSparePartView(p), err
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Spare part name")
	_ = create.MarkFlagRequired("name")

	var newName string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a spare part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				p, err := svc.UpdateSparePart(ctx, id, &catalog.SparePartDTO{Name: newName})
				return toSparePartView(p), err
			})
		},
	}
	edit.Flags().StringVar(&newName, "name", "", "Spare part name")
	_ = edit.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List spare parts by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				parts, err := svc.ListSpareParts(ctx)
				return mapViews(parts, toSparePartView), err
			})
		},
	}

	cmd.AddCommand(create, edit, list)
	return cmd
}

func newCatalogConcernCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "concern", Short: "Known concerns and their usual solution"}

	var dto catalog.ConcernSolutionDTO
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a concern and its solution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				c, err := svc.CreateConcernSolution(ctx, &dto)
				return toConcernSolutionView(c), err
			})
		},
	}
	concernFlags(create, &dto)

	var editDTO catalog.ConcernSolutionDTO
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a concern and its solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				c, err := svc.UpdateConcernSolution(ctx, id, &editDTO)
				return toConcernSolutionView(c), err
			})
		},
	}
	concernFlags(edit, &editDTO)

	list := &cobra.Command{
		Use:   "list",
		Short: "List concerns alphabetically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return catalogRun(cmd, func(ctx context.Context, svc *services.MasterDataService) (any, error) {
				items, err := svc.ListConcernSolutions(ctx)
				return mapViews(items, toConcernSolutionView), err
			})
		},
	}

	cmd.AddCommand(create, edit, list)
	return cmd
}

func concernFlags(cmd *cobra.Command, dto *catalog.ConcernSolutionDTO) {
	cmd.Flags().StringVar(&dto.Concern, "concern", "", "Concern as reported by the customer")
	cmd.Flags().StringVar(&dto.Solution, "solution", "", "Usual fix")
	_ = cmd.MarkFlagRequired("concern")
	_ = cmd.MarkFlagRequired("solution")
}
