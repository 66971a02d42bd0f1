// seed carga materias primas o proveedores desde un CSV separado por ';'
// (exportación habitual de hojas de cálculo del obrador).
//
// Uso:
//
//	go run ./cmd/seed -kind materials -file materias.csv
//	go run ./cmd/seed -kind suppliers -file proveedores.csv -charset latin1
//
// Columnas de materials: nombre;categoria;unidad;stock_inicial;costo_inicial;umbral
// Columnas de suppliers: nombre;contacto;telefono;email;direccion
// La primera fila es cabecera y se ignora.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/application/usecase"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/documents"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/storage"
	"github.com/jhoicas/boulangerie-api/pkg/config"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

func main() {
	kind := flag.String("kind", "materials", "materials | suppliers")
	file := flag.String("file", "", "ruta del CSV")
	charset := flag.String("charset", "utf8", "utf8 | latin1")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "falta -file")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "seed"})

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readRows(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacén: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var created int
	switch *kind {
	case "materials":
		uc := usecase.NewMaterialUseCase(documents.NewRawMaterialRepository(store), documents.NewTxRunner(store), log)
		for i, row := range rows {
			req, err := materialFromRow(row)
			if err != nil {
				log.Warn().Err(err).Int("fila", i+2).Msg("fila ignorada")
				continue
			}
			if _, err := uc.Create(ctx, *req); err != nil {
				log.Warn().Err(err).Int("fila", i+2).Str("name", req.Name).Msg("no se pudo crear la materia prima")
				continue
			}
			created++
		}
	case "suppliers":
		uc := usecase.NewSupplierUseCase(documents.NewSupplierRepository(store))
		for i, row := range rows {
			req, err := supplierFromRow(row)
			if err != nil {
				log.Warn().Err(err).Int("fila", i+2).Msg("fila ignorada")
				continue
			}
			if _, err := uc.Create(ctx, *req); err != nil {
				log.Warn().Err(err).Int("fila", i+2).Str("name", req.Name).Msg("no se pudo crear el proveedor")
				continue
			}
			created++
		}
	default:
		fmt.Fprintf(os.Stderr, "-kind %q no soportado\n", *kind)
		os.Exit(2)
	}

	fmt.Printf("Cargados %d de %d registros (%s)\n", created, len(rows), *kind)
}

// readRows decodifica el CSV (latin1 opcional) y descarta la cabecera.
func readRows(r io.Reader, charset string) ([][]string, error) {
	switch strings.ToLower(charset) {
	case "latin1", "iso-8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "utf8", "utf-8", "":
	default:
		return nil, fmt.Errorf("charset %q no soportado", charset)
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func materialFromRow(row []string) (*dto.CreateMaterialRequest, error) {
	if len(row) < 3 {
		return nil, errors.New("se esperan al menos nombre;categoria;unidad")
	}
	req := &dto.CreateMaterialRequest{
		Name:     strings.TrimSpace(row[0]),
		Category: strings.TrimSpace(row[1]),
		Unit:     strings.ToLower(strings.TrimSpace(row[2])),
	}
	var err error
	if req.InitialStock, err = decimalAt(row, 3); err != nil {
		return nil, fmt.Errorf("stock_inicial: %w", err)
	}
	if req.InitialCost, err = decimalAt(row, 4); err != nil {
		return nil, fmt.Errorf("costo_inicial: %w", err)
	}
	if req.AlertThreshold, err = decimalAt(row, 5); err != nil {
		return nil, fmt.Errorf("umbral: %w", err)
	}
	return req, nil
}

func supplierFromRow(row []string) (*dto.CreateSupplierRequest, error) {
	if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
		return nil, errors.New("nombre vacío")
	}
	at := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return &dto.CreateSupplierRequest{
		Name:    at(0),
		Contact: at(1),
		Phone:   at(2),
		Email:   at(3),
		Address: at(4),
	}, nil
}

// decimalAt admite coma decimal ("12,5"); columna ausente o vacía es cero.
func decimalAt(row []string, i int) (decimal.Decimal, error) {
	if i >= len(row) {
		return decimal.Zero, nil
	}
	s := strings.ReplaceAll(strings.TrimSpace(row[i]), ",", ".")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
