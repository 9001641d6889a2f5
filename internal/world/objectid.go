package world

import "sync/atomic"

// ObjectIDGenerator generates unique object IDs for spawned entities.
//
// ID ranges (convention):
//
//	0x00000000 - 0x1FFFFFFF: Reserved (0 = invalid)
//	0x20000000 - 0x2FFFFFFF: NPCs and monsters (268M IDs)
type ObjectIDGenerator struct {
	nextNpcID atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextNpcID.Store(0x20000000) // Start at 536M (NPC range)
	return gen
}

// NextNpcID generates next unique NPC object ID.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextNpcID() uint32 {
	return g.nextNpcID.Add(1)
}
