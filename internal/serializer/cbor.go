package serializer

import (
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// 对象图中每层对象最多展开为三层 CBOR 嵌套，默认 512 层的对象图需要的层数远低于此值。
const cborMaxNestedLevels = 4096

var (
	// cborEnc 使用 Core Deterministic Encoding：相同的数据总是得到相同的字节，
	// 这样文件头里的摘要对同一对象图是稳定的。
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("serializer: CBOR encoder initialization failed: " + err.Error())
	}
	// 负载总大小由调用方限制，这里不再限制单个数组或 map 的元素数。
	cborDec, err = cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels:  cborMaxNestedLevels,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: math.MaxInt32,
		MaxMapPairs:      math.MaxInt32,
	}.DecMode()
	if err != nil {
		panic("serializer: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORSerializer 使用 fxamacker/cbor 进行二进制序列化，是对象图文件的默认负载格式。
type CBORSerializer struct{}

// 编译期断言：确保 CBORSerializer 实现了 Serializer 接口。
var _ Serializer = (*CBORSerializer)(nil)

func (CBORSerializer) Marshal(v any) ([]byte, error) {
	return cborEnc.Marshal(v)
}

func (CBORSerializer) Unmarshal(data []byte, v any) error {
	return cborDec.Unmarshal(data, v)
}

func (CBORSerializer) Name() string { return "cbor" }
