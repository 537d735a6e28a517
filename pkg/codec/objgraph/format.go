package objgraph

import (
	"bytes"
	"encoding/binary"

	"github.com/blang/semver/v4"
	"github.com/zeebo/blake3"

	"github.com/lk2023060901/danmu-serde-go/internal/serializer"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

// 文件布局（多字节整数均为大端）：
//
//	0   4   magic "OGRF"
//	4   1   主版本号
//	5   1   次版本号
//	6   1   负载格式（serializer.Format）
//	7   1   保留，写 0
//	8   4   负载长度
//	12  32  摘要：以 digestKey 为密钥对前 12 字节与负载计算的 BLAKE3
//	44  n   负载
const (
	magic      = "OGRF"
	prefixSize = 12
	digestSize = 32
	headerSize = prefixSize + digestSize
)

// FormatVersion 为当前写出的文件版本，1.1 起节点可以是 binary/text。
// 读取时主版本号必须一致，次版本号不能高于当前版本。
var FormatVersion = semver.MustParse("1.1.0")

var digestKey = [32]byte{
	'd', 'a', 'n', 'm', 'u', '.', 's', 'e', 'r', 'd', 'e', '.',
	'o', 'b', 'j', 'g', 'r', 'a', 'p', 'h', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func digest(prefix, payload []byte) [digestSize]byte {
	h, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("objgraph: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	h.Write(prefix)
	h.Write(payload)
	var sum [digestSize]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// pack 在负载前加上文件头。
func pack(format serializer.Format, payload []byte) []byte {
	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, magic)
	out[4] = byte(FormatVersion.Major)
	out[5] = byte(FormatVersion.Minor)
	out[6] = byte(format)
	binary.BigEndian.PutUint32(out[8:12], uint32(len(payload)))
	sum := digest(out[:prefixSize], payload)
	copy(out[prefixSize:headerSize], sum[:])
	return append(out, payload...)
}

// unpack 校验文件头并返回负载格式与负载。
func unpack(path string, data []byte, maxBytes int64) (serializer.Format, []byte, error) {
	if len(data) < headerSize {
		return 0, nil, merr.WrapErrCorruptData(path, "truncated header: %d bytes", len(data))
	}
	if string(data[:4]) != magic {
		return 0, nil, merr.WrapErrCorruptData(path, "bad magic %q", data[:4])
	}
	version := semver.Version{Major: uint64(data[4]), Minor: uint64(data[5])}
	if version.Major != FormatVersion.Major || version.Minor > FormatVersion.Minor {
		return 0, nil, merr.WrapErrCorruptData(path, "unsupported version %s, current %s", version, FormatVersion)
	}
	format := serializer.Format(data[6])
	if _, err := serializer.ByFormat(format); err != nil {
		return 0, nil, merr.WrapErrCorruptData(path, "unknown payload format %d", data[6])
	}

	length := int64(binary.BigEndian.Uint32(data[8:12]))
	if maxBytes > 0 && length > maxBytes {
		return 0, nil, merr.WrapErrCorruptData(path, "payload of %d bytes exceeds limit %d", length, maxBytes)
	}
	payload := data[headerSize:]
	if int64(len(payload)) != length {
		return 0, nil, merr.WrapErrCorruptData(path, "payload is %d bytes, header says %d", len(payload), length)
	}
	sum := digest(data[:prefixSize], payload)
	if !bytes.Equal(sum[:], data[prefixSize:headerSize]) {
		return 0, nil, merr.WrapErrCorruptData(path, "digest mismatch")
	}
	return format, payload, nil
}
