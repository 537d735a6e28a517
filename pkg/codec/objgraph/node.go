package objgraph

// kind 为节点类别。
type kind uint8

const (
	kindNil kind = iota
	kindBool
	kindInt
	kindUint
	kindFloat
	kindString
	kindBytes
	kindSlice
	kindArray
	kindMap
	kindStruct
	kindPtr
	// kindBinary 与 kindText 保存实现了 encoding 编组接口的值，
	// 内容分别在 Y 与 S 中。
	kindBinary
	kindText
)

var kindNames = [...]string{
	kindNil:    "nil",
	kindBool:   "bool",
	kindInt:    "int",
	kindUint:   "uint",
	kindFloat:  "float",
	kindString: "string",
	kindBytes:  "bytes",
	kindSlice:  "slice",
	kindArray:  "array",
	kindMap:    "map",
	kindStruct: "struct",
	kindPtr:    "ptr",
	kindBinary: "binary",
	kindText:   "text",
}

func (k kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// node 为对象图中的一个值。
type node struct {
	K kind `cbor:"k" json:"k"`
	// T 为类型标签，只出现在根节点与接口位置。
	T string `cbor:"t,omitempty" json:"t,omitempty"`

	// ID 为首次出现的指针的编号，Ref 引用此前出现过的指针，编号从 1 开始。
	ID  uint32 `cbor:"id,omitempty" json:"id,omitempty"`
	Ref uint32 `cbor:"r,omitempty" json:"r,omitempty"`

	B bool    `cbor:"b,omitempty" json:"b,omitempty"`
	I int64   `cbor:"i,omitempty" json:"i,omitempty"`
	U uint64  `cbor:"u,omitempty" json:"u,omitempty"`
	F float64 `cbor:"f,omitempty" json:"f,omitempty"`
	S string  `cbor:"s,omitempty" json:"s,omitempty"`
	Y []byte  `cbor:"y,omitempty" json:"y,omitempty"`

	Items   []*node `cbor:"it,omitempty" json:"it,omitempty"`
	Fields  []field `cbor:"fs,omitempty" json:"fs,omitempty"`
	Entries []entry `cbor:"en,omitempty" json:"en,omitempty"`
	Elem    *node   `cbor:"e,omitempty" json:"e,omitempty"`
}

type field struct {
	N string `cbor:"n" json:"n"`
	V *node  `cbor:"v" json:"v"`
}

type entry struct {
	K *node `cbor:"k" json:"k"`
	V *node `cbor:"v" json:"v"`
}

var nilNode = node{K: kindNil}

func newNil() *node {
	n := nilNode
	return &n
}
