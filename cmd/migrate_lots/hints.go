package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

// readHints lee product_id,expires_at,invoice_ref. La primera fila es encabezado.
// Planillas exportadas desde Excel suelen venir en latin1.
func readHints(r io.Reader, charset string) (map[string]inventory.LegacyLotHint, error) {
	switch strings.ToLower(charset) {
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "", "utf8", "utf-8":
	default:
		return nil, fmt.Errorf("charset no soportado: %q", charset)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make(map[string]inventory.LegacyLotHint, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		var hint inventory.LegacyLotHint
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			t, err := parseDate(strings.TrimSpace(row[1]))
			if err != nil {
				return nil, fmt.Errorf("fila %d: %w", i+1, err)
			}
			hint.ExpiresAt = &t
		}
		if len(row) > 2 {
			hint.InvoiceRef = strings.TrimSpace(row[2])
		}
		out[id] = hint
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", s)
}
