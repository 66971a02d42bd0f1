package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadRows_Latin1(t *testing.T) {
	src := "nombre;categoria;unidad\nLevadura fresca;Fermentos;kg\nAzúcar glas;Azúcares;kg\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	rows, err := readRows(bytes.NewBufferString(encoded), "latin1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Azúcar glas", rows[1][0])
	assert.Equal(t, "Azúcares", rows[1][1])
}

func TestReadRows_CharsetDesconocido(t *testing.T) {
	_, err := readRows(strings.NewReader("a;b\n"), "ebcdic")
	assert.Error(t, err)
}

func TestMaterialFromRow(t *testing.T) {
	req, err := materialFromRow([]string{" Harina T55 ", "Harinas", "KG", "25", "0,92", "10"})
	require.NoError(t, err)
	assert.Equal(t, "Harina T55", req.Name)
	assert.Equal(t, "kg", req.Unit)
	assert.True(t, decimal.RequireFromString("0.92").Equal(req.InitialCost))
	assert.True(t, decimal.NewFromInt(25).Equal(req.InitialStock))
	assert.True(t, decimal.NewFromInt(10).Equal(req.AlertThreshold))

	// columnas numéricas ausentes quedan en cero
	req, err = materialFromRow([]string{"Sal", "Condimentos", "kg"})
	require.NoError(t, err)
	assert.True(t, req.InitialStock.IsZero())

	_, err = materialFromRow([]string{"Sal", "Condimentos", "kg", "diez"})
	assert.Error(t, err)
	_, err = materialFromRow([]string{"Sal"})
	assert.Error(t, err)
}

func TestSupplierFromRow(t *testing.T) {
	req, err := supplierFromRow([]string{"Moulins Bourgeois", "Paul", "0102030405"})
	require.NoError(t, err)
	assert.Equal(t, "Moulins Bourgeois", req.Name)
	assert.Equal(t, "0102030405", req.Phone)
	assert.Empty(t, req.Email)

	_, err = supplierFromRow([]string{"  "})
	assert.Error(t, err)
}
