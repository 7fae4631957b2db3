// Package value implements the tagged, reference-counted runtime value
// graph of the interpreter: char, int, float, string, list, list-node,
// position and the none singleton, plus the operator set the evaluator
// drives.
//
// The representation is one concrete struct switched on a tag rather
// than an interface hierarchy, because refcounting mutates state every
// variant shares.
package value

// Tag identifies which payload fields of an Object are meaningful.
type Tag uint8

const (
	TagNone Tag = iota
	TagChar
	TagInt
	TagFloat
	TagString
	TagList
	TagListNode
	TagPosition
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagChar:
		return "char"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	case TagList:
		return "list"
	case TagListNode:
		return "list-node"
	case TagPosition:
		return "position"
	default:
		return "unknown"
	}
}

// rank orders the numeric types char < int < float for promotion.
func (t Tag) rank() int {
	switch t {
	case TagChar:
		return 0
	case TagInt:
		return 1
	case TagFloat:
		return 2
	default:
		return -1
	}
}

func (t Tag) isNumeric() bool { return t.rank() >= 0 }

// Object is the single heap entity backing every value tag. Only the
// fields relevant to Tag are meaningful; the rest are zero.
type Object struct {
	tag      Tag
	refcount int32
	id       int64

	ch byte
	i  int64
	f  float64
	s  []byte

	list  *listData
	inner *Object // TagListNode: the single owning reference it holds
	pos   *PositionData
}

// PositionData is the opaque reader checkpoint a TagPosition value
// wraps: the reader checkpoint plus the scanner state saved with it.
// internal/lexer builds these values in Scanner.Save and imports this
// package, so the payload is defined here and holds no lexer types.
type PositionData struct {
	FileID      string
	FilePath    string
	ByteOffset  int64
	Line, Col   int
	IndentStack []int
	AtBOL       bool

	// Snapshot of the token that was current at Save time; TokenKind is
	// the lexer's Kind stored as a plain int so this package stays free
	// of a lexer import.
	TokenKind          int
	TokenLexeme        string
	TokenLine, TokenCol int
}

type listData struct {
	nodes []*Object // each element is a TagListNode object
}

var nextID int64

func allocID() int64 {
	nextID++
	return nextID
}

// RegistryHook lets an optional live-object registry (internal/registry)
// observe every allocation and every free, feeding the object.dsv
// debug dump. It is a package-level variable, not a parameter threaded
// through every constructor; the interpreter is single threaded.
type RegistryHook interface {
	Track(o *Object)
	Untrack(o *Object)
}

var registryHook RegistryHook

// SetRegistryHook installs or clears (nil) the live-object tracker.
func SetRegistryHook(h RegistryHook) { registryHook = h }

func track(o *Object) {
	if registryHook != nil {
		registryHook.Track(o)
	}
}

func untrack(o *Object) {
	if registryHook != nil {
		registryHook.Untrack(o)
	}
}

func alloc(tag Tag) *Object {
	o := &Object{tag: tag, refcount: 1, id: allocID()}
	track(o)
	return o
}

// none is the process-wide singleton: refcount pinned, free is a no-op.
var none = &Object{tag: TagNone, refcount: 1, id: 0}

func None() *Object { return none }

func NewChar(c byte) *Object {
	o := alloc(TagChar)
	o.ch = c
	return o
}

func NewInt(i int64) *Object {
	o := alloc(TagInt)
	o.i = i
	return o
}

func NewFloat(f float64) *Object {
	o := alloc(TagFloat)
	o.f = f
	return o
}

func NewString(s string) *Object {
	o := alloc(TagString)
	o.s = []byte(s)
	return o
}

func NewList() *Object {
	o := alloc(TagList)
	o.list = &listData{}
	return o
}

// NewPosition wraps a checkpoint as a first-class, refcountable value.
func NewPosition(p PositionData) *Object {
	o := alloc(TagPosition)
	o.pos = &p
	return o
}

func newListNode(v *Object) *Object {
	IncRef(v)
	o := alloc(TagListNode)
	o.inner = v
	return o
}

// Tag reports the value's type tag.
func (o *Object) Tag() Tag {
	if o == nil {
		return TagNone
	}
	return o.tag
}

func (o *Object) RefCount() int32 {
	if o == nil {
		return 0
	}
	return o.refcount
}

func (o *Object) ID() int64 { return o.id }

// Default allocates the zero value declarations use: numeric 0, empty
// string/list.
func Default(tag Tag) *Object {
	switch tag {
	case TagChar:
		return NewChar(0)
	case TagInt:
		return NewInt(0)
	case TagFloat:
		return NewFloat(0)
	case TagString:
		return NewString("")
	case TagList:
		return NewList()
	default:
		return None()
	}
}

// IncRef raises the refcount of a live owning reference. None is
// pinned and never participates.
func IncRef(o *Object) {
	if o == nil || o.tag == TagNone {
		return
	}
	o.refcount++
}

// DecRef lowers the refcount; at zero it frees owned children (list
// frees its nodes, a node decrefs its inner value, a string frees its
// buffer) and then the value itself.
func DecRef(o *Object) {
	if o == nil || o.tag == TagNone {
		return
	}
	o.refcount--
	if o.refcount > 0 {
		return
	}
	switch o.tag {
	case TagList:
		for _, n := range o.list.nodes {
			DecRef(n)
		}
		o.list.nodes = nil
	case TagListNode:
		DecRef(o.inner)
		o.inner = nil
	case TagString:
		o.s = nil
	}
	untrack(o)
}

// DeepCopy produces a value independent of o at every level, sharing
// no mutable interior.
func DeepCopy(o *Object) *Object {
	if o == nil {
		return None()
	}
	switch o.tag {
	case TagChar:
		return NewChar(o.ch)
	case TagInt:
		return NewInt(o.i)
	case TagFloat:
		return NewFloat(o.f)
	case TagString:
		return NewString(string(o.s))
	case TagList:
		nl := NewList()
		for _, n := range o.list.nodes {
			c := DeepCopy(n.inner)
			ListAppend(nl, c)
			DecRef(c)
		}
		return nl
	case TagPosition:
		p := *o.pos
		p.IndentStack = append([]int(nil), o.pos.IndentStack...)
		return NewPosition(p)
	default:
		return None()
	}
}

// ListAppend appends v (taking a fresh owning reference to it) to the
// end of list l. l must be TagList.
func ListAppend(l *Object, v *Object) {
	l.list.nodes = append(l.list.nodes, newListNode(v))
}

// ListLen reports the number of elements in a TagList value.
func ListLen(l *Object) int {
	if l == nil || l.tag != TagList {
		return 0
	}
	return len(l.list.nodes)
}

// ListElem returns the i'th element's contained value (auto-dereferenced
// past the internal TagListNode wrapper), without taking ownership.
// Callers that retain it must IncRef explicitly.
func ListElem(l *Object, i int) *Object {
	return l.list.nodes[i].inner
}

// Position returns the checkpoint payload of a TagPosition value.
func (o *Object) Position() *PositionData { return o.pos }

// Bytes exposes the raw buffer of a TagString value.
func (o *Object) Bytes() []byte { return o.s }

// RawInt extracts the numeric payload of o as an int64 without
// allocating, for callers (subscript/slice index evaluation) that only
// need the machine value and never the boxed result. o must already be
// numeric; convert with AsInt first if it might not be.
func RawInt(o *Object) int64 {
	return numAsInt(o)
}
