package lsb
import (
	"math/bits"
	"math/rand/v2"
)

// fixed PCG stream, so that a sequence depends on the seed only.
const dispersalStream = 0x9e3779b97f4a7c15

// SlotSet is the used-slot set of one embed or extract pass.
type SlotSet struct {
	words	[]uint64
	size	int
	count	int
}

func NewSlotSet( size int ) *SlotSet {
	return &SlotSet{
		make( []uint64, ( size + 63 ) / 64 ),
		size,
		0,
	}
}

func(s *SlotSet) Has( slot int ) bool {
	return s.words[ slot / 64 ] & ( 1 << uint( slot % 64 ) ) != 0
}

// Add marks slot as used and reports whether it was free before.
func(s *SlotSet) Add( slot int ) bool {
	if s.Has( slot ) {
		return false
	}
	s.words[ slot / 64 ] |= 1 << uint( slot % 64 )
	s.count++
	return true
}

func(s *SlotSet) Len() int {
	return s.count
}

func(s *SlotSet) Size() int {
	return s.size
}

/*
 * Sequence walks a seeded permutation of [0, pool) with a lazy
 * Fisher-Yates shuffle: only displaced positions are remembered, so the
 * memory is proportional to the amount of drawn slots, not to the pool.
 * Slots already claimed in the shared SlotSet are skipped, which lets
 * several sequences share one pass without colliding.
 */
type Sequence struct {
	src	*rand.PCG
	pool	int
	drawn	int
	swaps	map[int]int
	used	*SlotSet
}

func NewSequence( seed int64, used *SlotSet ) *Sequence {
	return &Sequence{
		rand.NewPCG( uint64(seed), dispersalStream ),
		used.Size(),
		0,
		map[int]int{},
		used,
	}
}

// Next returns the next free slot, false when the pool is exhausted.
func(s *Sequence) Next() (int, bool) {
	for s.drawn < s.pool {
		i := s.drawn
		j := i + int( s.uintn( uint64( s.pool - i ) ) )
		vi, vj := s.at( i ), s.at( j )
		s.swaps[j] = vi
		delete( s.swaps, i )
		s.drawn++

		if s.used.Add( vj ) {
			return vj, true
		}
	}
	return 0, false
}

func(s *Sequence) Take( count int ) ([]int, error) {
	slots := make( []int, 0, count )
	for len(slots) < count {
		slot, ok := s.Next()
		if !ok {
			return nil, ErrCapacityExceeded
		}
		slots = append( slots, slot )
	}
	return slots, nil
}

func(s *Sequence) at( i int ) int {
	if v, ok := s.swaps[i]; ok {
		return v
	}
	return i
}

// uniform value in [0, n), Lemire's multiply-shift with rejection.
// the sampling is done here rather than by math/rand so the sequence
// only depends on the PCG output.
func(s *Sequence) uintn( n uint64 ) uint64 {
	hi, lo := bits.Mul64( s.src.Uint64(), n )
	if lo < n {
		threshold := -n % n
		for lo < threshold {
			hi, lo = bits.Mul64( s.src.Uint64(), n )
		}
	}
	return hi
}

// Draw returns count distinct slots of [0, pool) in the order defined by seed.
// The result is a pure function of (seed, count, pool).
func Draw( seed int64, count, pool int ) ([]int, error) {
	if count < 0 || pool < 0 || count > pool {
		return nil, ErrCapacityExceeded
	}
	return NewSequence( seed, NewSlotSet( pool ) ).Take( count )
}
