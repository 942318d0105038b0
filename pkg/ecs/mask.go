package ecs

import "math/bits"

// maskBits is the number of component types a componentMask can describe.
const maskBits = 64

// componentMask records which component types an entity holds. Bit i is set iff the entity has a
// component whose type ID is i.
type componentMask uint64

// set enables the bit of the given component ID.
func (m *componentMask) set(cid componentID) {
	*m |= componentMask(1) << cid
}

// clear disables the bit of the given component ID.
func (m *componentMask) clear(cid componentID) {
	*m &^= componentMask(1) << cid
}

// has checks if the bit of the given component ID is set.
func (m componentMask) has(cid componentID) bool {
	return m&(componentMask(1)<<cid) != 0
}

// contains checks if every bit set in sub is also set in m.
func (m componentMask) contains(sub componentMask) bool {
	return m&sub == sub
}

// each calls fn for every set bit in ascending order.
func (m componentMask) each(fn func(componentID)) {
	for rest := uint64(m); rest != 0; rest &= rest - 1 {
		fn(componentID(bits.TrailingZeros64(rest)))
	}
}
