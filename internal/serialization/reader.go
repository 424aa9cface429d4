package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/convnets/internal/tensor"
)

// File is a decoded SafeTensors file held in memory.
type File struct {
	metadata map[string]string
	tensors  []TensorMeta // sorted by name
	data     []byte
	checksum [32]byte
}

// ReadFile reads and validates the SafeTensors file at path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	f, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode reads a SafeTensors stream from r.
//
// The header size, tensor names, dtypes, byte ranges and (when present)
// the stored checksum are all validated before Decode returns.
func Decode(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrHeaderTooLarge, headerSize, MaxHeaderSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimRight(headerBytes, " "), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	f := &File{metadata: map[string]string{}}
	for name, entry := range entries {
		if name == MetadataKey {
			if err := json.Unmarshal(entry, &f.metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}

		meta, err := parseTensorHeader(name, entry)
		if err != nil {
			return nil, err
		}
		f.tensors = append(f.tensors, meta)
	}
	sort.Slice(f.tensors, func(i, j int) bool {
		return f.tensors[i].Name < f.tensors[j].Name
	})

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(f.tensors, int64(len(data))); err != nil {
		return nil, err
	}
	f.data = data
	f.checksum = ComputeChecksum(data)

	if stored, ok := f.metadata[ChecksumKey]; ok {
		sum, err := ParseChecksum(stored)
		if err != nil {
			return nil, err
		}
		if err := ValidateChecksum(f.checksum, sum); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func parseTensorHeader(name string, entry json.RawMessage) (TensorMeta, error) {
	if err := ValidateTensorName(name); err != nil {
		return TensorMeta{}, err
	}

	var h SafeTensorHeader
	if err := json.Unmarshal(entry, &h); err != nil {
		return TensorMeta{}, fmt.Errorf("tensor %s: failed to parse header entry: %w", name, err)
	}

	dtype, err := dtypeFromSafeTensors(h.DType)
	if err != nil {
		return TensorMeta{}, fmt.Errorf("tensor %s: %w", name, err)
	}

	shape := make(tensor.Shape, len(h.Shape))
	for i, d := range h.Shape {
		shape[i] = int(d)
	}

	meta := TensorMeta{
		Name:   name,
		DType:  dtype,
		Shape:  shape,
		Offset: h.DataOffsets[0],
		Size:   h.DataOffsets[1] - h.DataOffsets[0],
	}
	if err := validateTensorSize(meta); err != nil {
		return TensorMeta{}, err
	}
	return meta, nil
}

// Metadata returns a copy of the string metadata, including the checksum.
func (f *File) Metadata() map[string]string {
	out := make(map[string]string, len(f.metadata))
	for k, v := range f.metadata {
		out[k] = v
	}
	return out
}

// Checksum returns the SHA-256 of the data section.
func (f *File) Checksum() [32]byte {
	return f.checksum
}

// TensorNames returns the tensor names in sorted order.
func (f *File) TensorNames() []string {
	names := make([]string, len(f.tensors))
	for i, t := range f.tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns the header entry for name.
func (f *File) TensorInfo(name string) (TensorMeta, error) {
	i := sort.Search(len(f.tensors), func(i int) bool { return f.tensors[i].Name >= name })
	if i == len(f.tensors) || f.tensors[i].Name != name {
		return TensorMeta{}, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return f.tensors[i], nil
}

// LoadTensor copies one tensor out of the file.
func (f *File) LoadTensor(name string) (*tensor.RawTensor, error) {
	meta, err := f.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	return f.load(meta)
}

func (f *File) load(meta TensorMeta) (*tensor.RawTensor, error) {
	raw, err := tensor.NewRaw(meta.Shape, meta.DType, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
	}
	copy(raw.Data(), f.data[meta.Offset:meta.Offset+meta.Size])
	return raw, nil
}

// StateDict copies every tensor out of the file.
func (f *File) StateDict() (map[string]*tensor.RawTensor, error) {
	stateDict := make(map[string]*tensor.RawTensor, len(f.tensors))
	for _, meta := range f.tensors {
		raw, err := f.load(meta)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}
