package model

type indexerImplementation struct {
	days         uint64
	blocksPerDay uint64
}

func (indexer *indexerImplementation) Index(day, block uint64) uint64 {
	return day*indexer.blocksPerDay + block + 1
}

func (indexer *indexerImplementation) Attributes(slot uint64) (day, block uint64) {
	slot = slot - 1
	block = slot % indexer.blocksPerDay
	day = slot / indexer.blocksPerDay
	return day, block
}

func (indexer *indexerImplementation) Slots() uint64 {
	return indexer.days * indexer.blocksPerDay
}
