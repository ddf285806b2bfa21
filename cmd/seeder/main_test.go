package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()

	file := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := file.AddSheet(name)
		require.NoError(t, err)
		for _, values := range rows {
			row := sheet.AddRow()
			for _, v := range values {
				row.AddCell().SetString(v)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "seed.xlsx")
	require.NoError(t, file.Save(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	t.Run("reads_every_sheet", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]string{
			"Medicines": {
				{"Common Name", "Approval Number", "Buy Price", "Sell Price"},
				{"Aspirin", "H1", "1.10", "2.00"},
			},
			"Employees": {
				{"username", "position"},
				{"alice", "Manager"},
				{"", ""},
			},
			"Inventory": {
				{"approval_number", "batch_number", "expiry_date", "quantity"},
				{"H1", "B1", "2027-01-31", "25"},
			},
		})

		data, err := LoadWorkbook(path)
		require.NoError(t, err)

		require.Len(t, data.Medicines, 1)
		assert.Equal(t, "2", data.Medicines[0].SellPrice.String())
		require.Len(t, data.Employees, 1)
		assert.Equal(t, domain.PositionManager, data.Employees[0].Position)
		require.Len(t, data.Stock, 1)
		assert.Equal(t, data.Medicines[0].ID, data.Stock[0].MedicineID)
		assert.Equal(t, 25, data.Stock[0].Quantity)
		assert.Empty(t, data.Suppliers)
	})

	t.Run("ids_are_stable", func(t *testing.T) {
		sheets := map[string][][]string{
			"Medicines": {{"common_name", "approval_number"}, {"Aspirin", "H1"}},
		}
		first, err := LoadWorkbook(writeWorkbook(t, sheets))
		require.NoError(t, err)
		second, err := LoadWorkbook(writeWorkbook(t, sheets))
		require.NoError(t, err)

		assert.Equal(t, first.Medicines[0].ID, second.Medicines[0].ID)
	})

	t.Run("inventory_for_unknown_medicine", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]string{
			"Inventory": {
				{"approval_number", "batch_number", "expiry_date", "quantity"},
				{"H404", "B1", "2027-01-31", "1"},
			},
		})

		_, err := LoadWorkbook(path)
		assert.ErrorContains(t, err, "Inventory row 2")
	})
}

func TestDemoDataset(t *testing.T) {
	data := demoDataset()

	positions := map[domain.Position]bool{}
	for _, e := range data.Employees {
		require.NoError(t, e.Validate())
		positions[e.Position] = true
	}
	assert.Len(t, positions, 5)

	for _, m := range data.Medicines {
		require.NoError(t, m.Validate())
	}
	assert.Len(t, data.Stock, len(data.Medicines))
}
