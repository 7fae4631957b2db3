package value

// Item, Slice and Length implement the subscript/slice/len rules:
// only string and list are sequences, negative indices count
// from the end, out-of-range indexing is an IndexError, and slice
// bounds are clamped into [0, len] with a > b producing an empty
// result.

func isSequence(o *Object) bool {
	return o.tag == TagString || o.tag == TagList
}

func Length(seq *Object) (*Object, error) {
	switch seq.tag {
	case TagString:
		return NewInt(int64(len(seq.s))), nil
	case TagList:
		return NewInt(int64(len(seq.list.nodes))), nil
	default:
		return nil, typeErr("len() requires a sequence, got %s", seq.tag)
	}
}

func normIndex(i, length int) (int, bool) {
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// Item returns a fresh owning reference to the element at index i,
// per the uniform convention that every function in this package hands its
// caller a reference it must eventually DecRef: for a string this is
// a newly allocated char, for a list it is the shared element with an
// extra incref. The internal TagListNode wrapper is never handed out;
// user expressions must not observe it.
func Item(seq *Object, i int64) (*Object, error) {
	if !isSequence(seq) {
		return nil, typeErr("subscript requires a sequence, got %s", seq.tag)
	}
	switch seq.tag {
	case TagString:
		idx, ok := normIndex(int(i), len(seq.s))
		if !ok {
			return nil, indexErr("string index %d out of range", i)
		}
		return NewChar(seq.s[idx]), nil
	default: // TagList
		idx, ok := normIndex(int(i), len(seq.list.nodes))
		if !ok {
			return nil, indexErr("list index %d out of range", i)
		}
		elem := ListElem(seq, idx)
		IncRef(elem)
		return elem, nil
	}
}

func clampSlice(a, b, length int) (int, int) {
	if a < 0 {
		a += length
	}
	if b < 0 {
		b += length
	}
	if a < 0 {
		a = 0
	}
	if a > length {
		a = length
	}
	if b < 0 {
		b = 0
	}
	if b > length {
		b = length
	}
	if a > b {
		return a, a
	}
	return a, b
}

func Slice(seq *Object, a, b int64) (*Object, error) {
	if !isSequence(seq) {
		return nil, typeErr("slice requires a sequence, got %s", seq.tag)
	}
	switch seq.tag {
	case TagString:
		lo, hi := clampSlice(int(a), int(b), len(seq.s))
		return NewString(string(seq.s[lo:hi])), nil
	default: // TagList
		lo, hi := clampSlice(int(a), int(b), len(seq.list.nodes))
		nl := NewList()
		for _, n := range seq.list.nodes[lo:hi] {
			c := DeepCopy(n.inner)
			ListAppend(nl, c)
			DecRef(c)
		}
		return nl, nil
	}
}
