package network

// VectorClock maps a service identifier to a monotonically non-decreasing
// counter. Each service ticks only its own entry; entries are never
// decremented.
type VectorClock map[string]uint64

func NewVectorClock(owner string) VectorClock {
	return VectorClock{owner: 1}
}

// Tick records a local event for owner and returns the clock.
func (vc VectorClock) Tick(owner string) VectorClock {
	vc[owner]++
	return vc
}

// DominatedBy reports whether other >= vc componentwise. A nil entry counts
// as zero.
func (vc VectorClock) DominatedBy(other VectorClock) bool {
	for k, v := range vc {
		if other[k] < v {
			return false
		}
	}
	return true
}

// Merge folds other into vc taking the componentwise max.
func (vc VectorClock) Merge(other VectorClock) VectorClock {
	for k, v := range other {
		if vc[k] < v {
			vc[k] = v
		}
	}
	return vc
}

func (vc VectorClock) Clone() VectorClock {
	res := make(VectorClock, len(vc))
	for k, v := range vc {
		res[k] = v
	}
	return res
}
