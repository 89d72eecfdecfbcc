// Package csvimport lee planillas de conteo físico (CSV) y las convierte en borradores
// para el procesador de lotes del libro de inventario.
//
// Columnas: ingredient (id o nombre exacto), operation_type, quantity y, opcionales,
// notes, production_date, expiry_period. El separador puede ser ',' o ';'.
package csvimport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Codificaciones aceptadas.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

const (
	colIngredient     = "ingredient"
	colOperationType  = "operation_type"
	colQuantity       = "quantity"
	colNotes          = "notes"
	colProductionDate = "production_date"
	colExpiryPeriod   = "expiry_period"
)

var requiredColumns = []string{colIngredient, colOperationType, colQuantity}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader resuelve insumos por id o nombre contra el repositorio.
type Reader struct {
	ingRepo repository.IngredientRepository
}

// NewReader construye el lector.
func NewReader(ingRepo repository.IngredientRepository) *Reader {
	return &Reader{ingRepo: ingRepo}
}

// NormalizeEncoding devuelve la codificación canónica o "" si no se reconoce.
func NormalizeEncoding(enc string) string {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1
	}
	return ""
}

// Read decodifica src y devuelve un borrador por fila de datos, en orden.
// Las filas con errores de lectura llegan con Invalid para que el lote las reporte
// sin tocar el libro. Un archivo sin cabecera válida o sin filas es un error de validación.
func (r *Reader) Read(ctx context.Context, src io.Reader, encoding string) ([]inventory.OperationDraft, error) {
	enc := NormalizeEncoding(encoding)
	if enc == "" {
		return nil, domain.NewValidationError("encoding", "codificación no soportada, use utf-8 o latin1")
	}

	data, err := io.ReadAll(decoder(src, enc))
	if err != nil {
		return nil, fmt.Errorf("csvimport: leer archivo: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectComma(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError("file", "el archivo está vacío")
	}
	if err != nil {
		return nil, domain.NewValidationError("file", "cabecera ilegible: "+err.Error())
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, domain.NewValidationError("file", "falta la columna "+c)
		}
	}

	cache := make(map[string]*entity.Ingredient)
	var drafts []inventory.OperationDraft
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("csvimport: leer fila: %w", err)
			}
			drafts = append(drafts, inventory.OperationDraft{
				Source:  map[string]string{"line": strconv.Itoa(pe.StartLine)},
				Invalid: map[string]string{"row": "fila ilegible: " + pe.Err.Error()},
			})
			continue
		}
		line, _ := cr.FieldPos(0)
		row := rowValues(record, index)
		if isBlank(row) {
			continue
		}
		d, err := r.draft(ctx, row, cache)
		if err != nil {
			return nil, err
		}
		row["line"] = strconv.Itoa(line)
		d.Source = row
		drafts = append(drafts, d)
	}
	if len(drafts) == 0 {
		return nil, domain.NewValidationError("file", "el archivo no tiene filas de datos")
	}
	return drafts, nil
}

func (r *Reader) draft(ctx context.Context, row map[string]string, cache map[string]*entity.Ingredient) (inventory.OperationDraft, error) {
	invalid := &domain.ValidationError{}
	in := dto.CreateOperationRequest{
		OperationType: strings.ToLower(row[colOperationType]),
		Notes:         row[colNotes],
		ExpiryPeriod:  row[colExpiryPeriod],
	}
	if pd := row[colProductionDate]; pd != "" {
		in.ProductionDate = &pd
	}

	if q, err := parseQuantity(row[colQuantity]); err != nil {
		invalid.Add(colQuantity, "número inválido")
	} else {
		in.Quantity = q
	}

	ref := row[colIngredient]
	if ref == "" {
		invalid.Add(colIngredient, "requerido")
	} else {
		ing, err := r.resolve(ctx, ref, cache)
		if err != nil {
			return inventory.OperationDraft{}, err
		}
		if ing == nil {
			invalid.Add(colIngredient, "insumo no encontrado")
		} else {
			in.IngredientID = ing.ID
		}
	}

	d := inventory.OperationDraft{Input: in}
	if invalid.HasErrors() {
		d.Invalid = invalid.Fields
	}
	return d, nil
}

// resolve busca por id cuando ref es un UUID y, si no, por nombre (sin distinguir mayúsculas).
func (r *Reader) resolve(ctx context.Context, ref string, cache map[string]*entity.Ingredient) (*entity.Ingredient, error) {
	key := strings.ToLower(ref)
	if ing, ok := cache[key]; ok {
		return ing, nil
	}
	var (
		ing *entity.Ingredient
		err error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		if ing, err = r.ingRepo.GetByID(ctx, ref); err != nil {
			return nil, err
		}
	}
	if ing == nil {
		if ing, err = r.ingRepo.GetByName(ctx, ref); err != nil {
			return nil, err
		}
	}
	cache[key] = ing
	return ing, nil
}

func decoder(src io.Reader, enc string) io.Reader {
	if enc == EncodingLatin1 {
		return transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	return src
}

// detectComma usa ';' cuando la cabecera lo trae y no trae ','.
func detectComma(data []byte) rune {
	first, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if strings.Contains(first, ";") && !strings.Contains(first, ",") {
		return ';'
	}
	return ','
}

// parseQuantity acepta coma decimal ("2,5") además de punto.
func parseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func rowValues(record []string, index map[string]int) map[string]string {
	row := make(map[string]string, len(index))
	for name, i := range index {
		if i < len(record) {
			row[name] = strings.TrimSpace(record[i])
		}
	}
	return row
}

func isBlank(row map[string]string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
