package model

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAndAttributesDeterministic(t *testing.T) {
	// Arrange
	scenarios := [][]uint64{
		{1, 1},
		{5, 4},
		{7, 6},
		{3, 10},
	}

	for _, scenario := range scenarios {
		days, blocksPerDay := scenario[0], scenario[1]

		// Act
		indexer := newIndexer(days, blocksPerDay)

		indices := make([]uint64, 0, days*blocksPerDay)
		for day := uint64(0); day < days; day++ {
			for block := uint64(0); block < blocksPerDay; block++ {
				indices = append(indices, indexer.Index(day, block))
			}
		}

		// Assert
		slices.Sort(indices)
		assert.Equal(t, days*blocksPerDay, indexer.Slots())
		for i, index := range indices {
			assert.Equal(t, uint64(i+1), index) // Indices are exactly 1..T
			day, block := indexer.Attributes(index)
			assert.Equal(t, index, indexer.Index(day, block))
		}
	}
}

func TestIndexAndAttributesNonDeterministic(t *testing.T) {
	for range 10 {
		// Arrange
		days := uint64(rand.Intn(7) + 1)
		blocksPerDay := uint64(rand.Intn(12) + 1)
		indexer := newIndexer(days, blocksPerDay)

		for slot := uint64(1); slot <= indexer.Slots(); slot++ {
			// Act
			day, block := indexer.Attributes(slot)

			// Assert
			assert.Less(t, day, days)
			assert.Less(t, block, blocksPerDay)
			assert.Equal(t, (slot-1)/blocksPerDay, day)
			assert.Equal(t, (slot-1)%blocksPerDay, block)
			assert.Equal(t, slot, indexer.Index(day, block))
		}
	}
}

func TestGridGeometry(t *testing.T) {
	//** Arrange
	grid := DefaultGrid()

	//** Act & Assert
	assert.Equal(t, uint64(20), grid.Slots())
	assert.Equal(t, uint64(0), grid.Day(1))
	assert.Equal(t, uint64(0), grid.Day(4))
	assert.Equal(t, uint64(1), grid.Day(5))
	assert.Equal(t, uint64(3), grid.Block(20))
	assert.Equal(t, uint64(7), grid.Slot(1, 2))
	assert.Equal(t, "Tuesday", grid.DayName(1))
	assert.Equal(t, "14h-16h", grid.BlockName(2))
	assert.Equal(t, "Day 9", grid.DayName(8))
	assert.Equal(t, "Block 6", grid.BlockName(5))
}
