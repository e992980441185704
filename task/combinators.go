package task

// Either holds the result of whichever of two futures resolved first,
// per Select2. Exactly one of A/B is populated (AOK xor BOK).
type Either[A, B any] struct {
	A   A
	B   B
	AOK bool
	BOK bool
}

// select2 polls two futures each cycle and resolves as soon as either
// does, supporting spec.md §8 scenario 5's "joint selection" of a
// blocking-pool JoinHandle against an unrelated Sleep. It does not
// cancel the loser — spec.md §5 has no first-class cancellation — so a
// caller that needs the loser's resources released (e.g. a Sleep's
// timer entry) must do so itself once Select2 resolves.
type select2[A, B any] struct {
	fa     Future[A]
	fb     Future[B]
	aDone  bool
	bDone  bool
	aValue A
	bValue B
}

// Select2 races fa against fb, resolving with whichever completes
// first. If both complete on the same poll, A wins.
func Select2[A, B any](fa Future[A], fb Future[B]) Future[Either[A, B]] {
	return &select2[A, B]{fa: fa, fb: fb}
}

func (s *select2[A, B]) Poll(cx *Context) (Either[A, B], bool) {
	if !s.aDone {
		if v, ok := s.fa.Poll(cx); ok {
			s.aValue, s.aDone = v, true
		}
	}
	if s.aDone {
		return Either[A, B]{A: s.aValue, AOK: true}, true
	}
	if !s.bDone {
		if v, ok := s.fb.Poll(cx); ok {
			s.bValue, s.bDone = v, true
		}
	}
	if s.bDone {
		return Either[A, B]{B: s.bValue, BOK: true}, true
	}
	return Either[A, B]{}, false
}

// pair is the result of Join2: both values, once both futures resolve.
type pair[A, B any] struct {
	A A
	B B
}

type join2[A, B any] struct {
	fa     Future[A]
	fb     Future[B]
	aDone  bool
	bDone  bool
	aValue A
	bValue B
}

// Join2 polls both futures each cycle, resolving once both have
// completed, e.g. to await two JoinHandles together; JoinAll covers
// more than two.
func Join2[A, B any](fa Future[A], fb Future[B]) Future[pair[A, B]] {
	return &join2[A, B]{fa: fa, fb: fb}
}

func (j *join2[A, B]) Poll(cx *Context) (pair[A, B], bool) {
	if !j.aDone {
		if v, ok := j.fa.Poll(cx); ok {
			j.aValue, j.aDone = v, true
		}
	}
	if !j.bDone {
		if v, ok := j.fb.Poll(cx); ok {
			j.bValue, j.bDone = v, true
		}
	}
	if j.aDone && j.bDone {
		return pair[A, B]{A: j.aValue, B: j.bValue}, true
	}
	return pair[A, B]{}, false
}

// JoinAll polls a homogeneous slice of futures, resolving once every
// one of them has completed, with results in the same order.
type joinAll[T any] struct {
	futs   []Future[T]
	done   []bool
	values []T
	left   int
}

func JoinAll[T any](futs []Future[T]) Future[[]T] {
	return &joinAll[T]{
		futs:   futs,
		done:   make([]bool, len(futs)),
		values: make([]T, len(futs)),
		left:   len(futs),
	}
}

func (j *joinAll[T]) Poll(cx *Context) ([]T, bool) {
	for i, f := range j.futs {
		if j.done[i] {
			continue
		}
		if v, ok := f.Poll(cx); ok {
			j.values[i] = v
			j.done[i] = true
			j.left--
		}
	}
	if j.left == 0 {
		return j.values, true
	}
	return nil, false
}
