package inventory

import (
	"sort"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BatchIndex mantiene los lotes de un producto ordenados FIFO:
// fecha de compra, luego fecha de creación y por último ID (orden total y estable).
type BatchIndex struct {
	batches []*entity.Batch
}

// NewBatchIndex ordena una sola vez los lotes recibidos. No copia los lotes:
// las mutaciones del motor se aplican sobre los mismos punteros.
func NewBatchIndex(batches []*entity.Batch) *BatchIndex {
	sorted := make([]*entity.Batch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool { return fifoLess(sorted[i], sorted[j]) })
	return &BatchIndex{batches: sorted}
}

func fifoLess(a, b *entity.Batch) bool {
	if !a.PurchaseDate.Equal(b.PurchaseDate) {
		return a.PurchaseDate.Before(b.PurchaseDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Insert agrega un lote conservando el orden FIFO.
func (ix *BatchIndex) Insert(b *entity.Batch) {
	i := sort.Search(len(ix.batches), func(i int) bool { return fifoLess(b, ix.batches[i]) })
	ix.batches = append(ix.batches, nil)
	copy(ix.batches[i+1:], ix.batches[i:])
	ix.batches[i] = b
}

// Batches devuelve los lotes en orden FIFO (el más antiguo primero).
func (ix *BatchIndex) Batches() []*entity.Batch {
	return ix.batches
}

// Len número de lotes.
func (ix *BatchIndex) Len() int { return len(ix.batches) }

// Get busca un lote por ID.
func (ix *BatchIndex) Get(id string) *entity.Batch {
	for _, b := range ix.batches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Available suma los paquetes disponibles; es el stock autoritativo del producto.
func (ix *BatchIndex) Available() int {
	total := 0
	for _, b := range ix.batches {
		total += b.QuantityRemaining
	}
	return total
}

// Received suma los paquetes recibidos en todos los lotes.
func (ix *BatchIndex) Received() int {
	total := 0
	for _, b := range ix.batches {
		total += b.QuantityReceived
	}
	return total
}

// Capacity suma los paquetes que pueden devolverse a los lotes.
func (ix *BatchIndex) Capacity() int {
	total := 0
	for _, b := range ix.batches {
		total += b.Capacity()
	}
	return total
}
