package media

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"media-resizer/internal/resolution"
)

// maxIconSide is the largest width or height an ICO directory entry can
// describe. A stored 0 means 256.
const maxIconSide = 256

// icoMagic starts every ICO file: reserved 0, type 1 (icon).
var icoMagic = []byte{0, 0, 1, 0}

// icoContainer wraps a single PNG-encoded image in an ICO file.
func icoContainer(pngData []byte, size resolution.Size) ([]byte, error) {
	if size.Width < 1 || size.Height < 1 || size.Width > maxIconSide || size.Height > maxIconSide {
		return nil, fmt.Errorf("icon size %s outside 1..%d", size, maxIconSide)
	}

	const headerLen = 6 + 16

	var buf bytes.Buffer
	buf.Grow(headerLen + len(pngData))

	buf.Write(icoMagic)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // image count

	buf.WriteByte(byte(size.Width % maxIconSide))
	buf.WriteByte(byte(size.Height % maxIconSide))
	buf.WriteByte(0) // palette size
	buf.WriteByte(0) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // color planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerLen))

	buf.Write(pngData)
	return buf.Bytes(), nil
}

// isICO reports whether data starts with an ICO header.
func isICO(data []byte) bool {
	return len(data) >= 6 && bytes.Equal(data[:4], icoMagic) && binary.LittleEndian.Uint16(data[4:6]) > 0
}
