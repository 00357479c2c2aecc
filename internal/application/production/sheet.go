package production

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

// RunSheetGenerator puerto de salida que dibuja la planilla de una corrida.
type RunSheetGenerator interface {
	GenerateRunSheet(ctx context.Context, run *entity.ProductionRun, recipe *entity.Recipe) ([]byte, error)
}

// SheetUseCase genera la planilla imprimible de una corrida para la estación de trabajo.
type SheetUseCase struct {
	runRepo    repository.ProductionRunRepository
	recipeRepo repository.RecipeRepository
	generator  RunSheetGenerator
}

// NewSheetUseCase construye el caso de uso.
func NewSheetUseCase(
	runRepo repository.ProductionRunRepository,
	recipeRepo repository.RecipeRepository,
	generator RunSheetGenerator,
) *SheetUseCase {
	return &SheetUseCase{runRepo: runRepo, recipeRepo: recipeRepo, generator: generator}
}

// Download devuelve los bytes del PDF y el nombre de archivo sugerido.
// La receta es opcional: si fue borrada la planilla usa solo el snapshot de la corrida.
func (uc *SheetUseCase) Download(ctx context.Context, runID string) (pdfBytes []byte, filename string, err error) {
	run, err := uc.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, "", fmt.Errorf("planilla: obtener corrida: %w", err)
	}
	if run == nil {
		return nil, "", fmt.Errorf("%w: corrida %s", domain.ErrNotFound, runID)
	}
	recipe, err := uc.recipeRepo.GetByID(ctx, run.RecipeID)
	if err != nil {
		return nil, "", fmt.Errorf("planilla: obtener receta: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateRunSheet(ctx, run, recipe)
	if err != nil {
		return nil, "", fmt.Errorf("planilla: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("corrida_%s.pdf", RunSuffix(run.ID)), nil
}
