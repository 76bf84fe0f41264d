// Package checkpoint stores decoder weights in SafeTensors files.
//
// SafeTensors format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes]
//
// F32 and F64 tensors round-trip unchanged. F16 and BF16 tensors written by
// other tools are upcast to float32 on read.
package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Pallab007Saha/Own-co-slam/internal/tensor"
)

// ErrInvalidFile is returned for files that are not well-formed SafeTensors.
var ErrInvalidFile = errors.New("checkpoint: invalid safetensors file")

// maxHeaderSize bounds the JSON header read from disk.
const maxHeaderSize = 100 * 1024 * 1024

// DType is a SafeTensors dtype tag.
type DType string

// SafeTensors dtypes understood by the reader.
const (
	F16  DType = "F16"
	BF16 DType = "BF16"
	F32  DType = "F32"
	F64  DType = "F64"
)

// TensorInfo describes a tensor in the SafeTensors header.
type TensorInfo struct {
	DType       DType    `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end)
}

// Header is the parsed JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// UnmarshalJSON splits the optional __metadata__ entry from tensor entries.
func (h *Header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]TensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}

	return nil
}

// Save writes tensors to path. Tensors are written in alphabetical order
// by name.
func Save(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return Write(file, tensors, metadata)
}

// Write encodes tensors and metadata to w in SafeTensors format.
func Write(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var offset int64
	for _, name := range names {
		raw := tensors[name]
		dtype, err := fromDataType(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		size := int64(raw.ByteSize())
		header[name] = TensorInfo{
			DType:       dtype,
			Shape:       append([]int(nil), raw.Shape()...),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		if _, err := w.Write(tensors[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return nil
}

// Reader reads tensors from a SafeTensors file.
type Reader struct {
	file       *os.File
	header     Header
	dataOffset int64
}

// Open opens a SafeTensors file and parses its header.
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: failed to read header size: %w", ErrInvalidFile, err)
	}
	if headerSize > maxHeaderSize {
		_ = file.Close()
		return nil, fmt.Errorf("%w: header size %d too large", ErrInvalidFile, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: failed to read header: %w", ErrInvalidFile, err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: failed to parse header JSON: %w", ErrInvalidFile, err)
	}

	return &Reader{
		file:       file,
		header:     header,
		dataOffset: int64(8 + headerSize), //nolint:gosec // G115: bounded by maxHeaderSize
	}, nil
}

// Close closes the file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the __metadata__ map of the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns the tensor names in alphabetical order.
func (r *Reader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns the header entry of a tensor.
func (r *Reader) TensorInfo(name string) (TensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return TensorInfo{}, fmt.Errorf("tensor %s not found", name)
	}
	return info, nil
}

// ReadTensor reads a tensor onto the CPU. F16 and BF16 data is upcast to
// float32.
func (r *Reader) ReadTensor(name string) (*tensor.RawTensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	shape := tensor.Shape(info.Shape)
	elemSize, err := info.DType.size()
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}

	size := info.DataOffsets[1] - info.DataOffsets[0]
	if info.DataOffsets[0] < 0 || size != int64(shape.NumElements()*elemSize) {
		return nil, fmt.Errorf("%w: tensor %s: data offsets [%d, %d] do not match shape %v of %s",
			ErrInvalidFile, name, info.DataOffsets[0], info.DataOffsets[1], info.Shape, info.DType)
	}

	data := make([]byte, size)
	if _, err := r.file.ReadAt(data, r.dataOffset+info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("%w: tensor %s: failed to read data: %w", ErrInvalidFile, name, err)
	}

	switch info.DType {
	case F32:
		return tensor.NewRawFromBytes(shape, tensor.Float32, tensor.CPU, data)
	case F64:
		return tensor.NewRawFromBytes(shape, tensor.Float64, tensor.CPU, data)
	case F16, BF16:
		raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
		if err != nil {
			return nil, err
		}
		upcastHalf(raw.AsFloat32(), data, info.DType)
		return raw, nil
	default:
		return nil, fmt.Errorf("tensor %s: unsupported dtype %s", name, info.DType)
	}
}

// Load reads every tensor of the file at path.
func Load(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	tensors := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, name := range r.TensorNames() {
		raw, err := r.ReadTensor(name)
		if err != nil {
			return nil, nil, err
		}
		tensors[name] = raw
	}
	return tensors, r.Metadata(), nil
}

func (d DType) size() (int, error) {
	switch d {
	case F16, BF16:
		return 2, nil
	case F32:
		return 4, nil
	case F64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %s", d)
	}
}

func fromDataType(dt tensor.DataType) (DType, error) {
	switch dt {
	case tensor.Float32:
		return F32, nil
	case tensor.Float64:
		return F64, nil
	default:
		return "", fmt.Errorf("unsupported dtype %s", dt)
	}
}
