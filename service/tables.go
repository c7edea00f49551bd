package service

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/julilatch/rs-api/model"
)

// TablesFromBlocks converts the Textract block graph of one page into
// ordered tables. The first cell row of each TABLE block becomes the
// headers, the remaining rows the data. Cell contents pass through as
// recognized; no row/header shape validation happens here.
func TablesFromBlocks(blocks []types.Block) []model.Table {
	byID := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		if b.Id != nil {
			byID[*b.Id] = b
		}
	}

	tables := make([]model.Table, 0)
	for _, b := range blocks {
		if b.BlockType != types.BlockTypeTable {
			continue
		}
		tables = append(tables, tableFromBlock(b, byID))
	}
	return tables
}

func tableFromBlock(table types.Block, byID map[string]types.Block) model.Table {
	// Cells keyed by row index, then column index; both are 1-based.
	cells := make(map[int32]map[int32]string)
	var maxRow int32

	for _, rel := range table.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			cell, ok := byID[id]
			if !ok || cell.BlockType != types.BlockTypeCell {
				continue
			}
			if cell.RowIndex == nil || cell.ColumnIndex == nil {
				continue
			}
			row, col := *cell.RowIndex, *cell.ColumnIndex
			if cells[row] == nil {
				cells[row] = make(map[int32]string)
			}
			cells[row][col] = cellText(cell, byID)
			if row > maxRow {
				maxRow = row
			}
		}
	}

	var t model.Table
	for row := int32(1); row <= maxRow; row++ {
		cols := cells[row]
		var maxCol int32
		for col := range cols {
			if col > maxCol {
				maxCol = col
			}
		}

		values := make([]string, 0, maxCol)
		for col := int32(1); col <= maxCol; col++ {
			values = append(values, cols[col])
		}

		if row == 1 {
			t.Headers = values
		} else {
			t.Rows = append(t.Rows, values)
		}
	}

	return t
}

// cellText joins the WORD children of a cell; a selected checkbox reads
// as "X", matching how Textract's own table helpers render it.
func cellText(cell types.Block, byID map[string]types.Block) string {
	var words []string
	for _, rel := range cell.Relationships {
		if rel.Type != types.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			child, ok := byID[id]
			if !ok {
				continue
			}
			switch child.BlockType {
			case types.BlockTypeWord:
				if child.Text != nil {
					words = append(words, *child.Text)
				}
			case types.BlockTypeSelectionElement:
				if child.SelectionStatus == types.SelectionStatusSelected {
					words = append(words, "X")
				}
			}
		}
	}
	return strings.Join(words, " ")
}
