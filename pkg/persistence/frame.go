package persistence

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Constants for the snapshot binary framing.
const (
	// MagicByte marks the start of a valid frame, so a reader can detect
	// loss of synchronization in a damaged file.
	MagicByte = 0xB7

	// HeaderSize is the fixed frame metadata size:
	// 1 byte (Magic) + 1 byte (OpCode) + 4 bytes (Length) + 4 bytes (CRC32).
	HeaderSize = 10

	// OpCodeVertex frames a gob-encoded VertexRecord.
	OpCodeVertex = 0x01
	// OpCodeEdge frames a gob-encoded EdgeRecord.
	OpCodeEdge = 0x02
)

var (
	// ErrInvalidMagic indicates the stream lost synchronization or is not
	// a KektorGraph snapshot.
	ErrInvalidMagic = errors.New("invalid magic byte")
	// ErrChecksumMismatch indicates corruption within a frame payload.
	ErrChecksumMismatch = errors.New("crc32 checksum mismatch")
	// ErrIncompleteFrame indicates the file ended mid-frame (truncation,
	// interrupted write).
	ErrIncompleteFrame = errors.New("incomplete frame")
	// ErrUnknownOpCode indicates a frame of a kind this reader does not
	// understand.
	ErrUnknownOpCode = errors.New("unknown frame opcode")
)

// FrameWriter writes typed binary frames to an underlying writer.
// Frame format: [Magic(1)][OpCode(1)][Length(4)][CRC(4)][Payload(N)].
type FrameWriter struct {
	w io.Writer
}

// NewFrameWriter wraps an io.Writer. Wrap a bufio.Writer underneath so the
// header and payload writes coalesce into one syscall.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame encodes the payload under the given opcode and writes it.
func (fw *FrameWriter) WriteFrame(opcode byte, payload []byte) error {
	header := make([]byte, HeaderSize)
	header[0] = MagicByte
	header[1] = opcode
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[6:10], crc32.ChecksumIEEE(payload))

	if _, err := fw.w.Write(header); err != nil {
		return err
	}
	_, err := fw.w.Write(payload)
	return err
}

// ReadFrame reads the next frame, validating magic and checksum. A clean
// EOF at a frame boundary is io.EOF; EOF inside a frame is
// ErrIncompleteFrame.
func ReadFrame(r io.Reader) (opcode byte, payload []byte, err error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		return 0, nil, ErrIncompleteFrame
	}

	if header[0] != MagicByte {
		return 0, nil, ErrInvalidMagic
	}
	opcode = header[1]
	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])

	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return opcode, nil, ErrIncompleteFrame
	}
	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return opcode, nil, ErrChecksumMismatch
	}
	return opcode, payload, nil
}
