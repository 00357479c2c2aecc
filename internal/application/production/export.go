package production

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

// ExportHeader primera línea del CSV de corridas.
const ExportHeader = "createdAt,recipeName,plannedOutput,actualOutput,startedAt,endedAt,durationSec"

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ExportCSV proyecta las corridas (más recientes primero) a CSV para planillas.
// recipeName siempre va entre comillas; fechas en ISO-8601 UTC o vacías.
func (uc *UseCase) ExportCSV(ctx context.Context, in dto.RunFilterRequest) ([]byte, error) {
	filter, err := toRunFilter(in)
	if err != nil {
		return nil, err
	}
	runs, err := uc.runRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return EncodeRunsCSV(runs), nil
}

// EncodeRunsCSV arma el CSV sin salto de línea final.
func EncodeRunsCSV(runs []*entity.ProductionRun) []byte {
	var buf bytes.Buffer
	buf.WriteString(ExportHeader)
	for _, r := range runs {
		buf.WriteByte('\n')
		fields := []string{
			isoTime(&r.CreatedAt),
			quote(r.RecipeName),
			r.PlannedOutput.String(),
			r.ActualOutput.String(),
			isoTime(&r.StartedAt),
			isoTime(r.EndedAt),
			strconv.FormatInt(r.DurationSeconds, 10),
		}
		buf.WriteString(strings.Join(fields, ","))
	}
	return buf.Bytes()
}

func isoTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
