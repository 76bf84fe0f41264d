//go:build windows

package webgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// DenseLayer is one bias-free fully connected layer executed by MLP.
// Weights are row-major [Out, In].
type DenseLayer struct {
	In      int
	Out     int
	Weights []float32
	ReLU    bool
}

// errReleased is returned when MLP is called after Release.
var errReleased = errors.New("webgpu: backend released")

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) (*wgpu.ShaderModule, error) {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader, nil
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)
	if shader == nil {
		return nil, fmt.Errorf("webgpu: failed to compile shader %s", name)
	}

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader, nil
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) (*wgpu.ComputePipeline, error) {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline, nil
	}
	b.mu.RUnlock()

	// Auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")
	if pipeline == nil {
		return nil, fmt.Errorf("webgpu: failed to create pipeline %s", name)
	}

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline, nil
}

// createMappedBuffer creates a GPU buffer of size bytes and uploads data
// through a mapping made at creation.
func (b *Backend) createMappedBuffer(data []byte, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if buffer == nil {
		return nil, fmt.Errorf("webgpu: failed to create %d-byte buffer", size)
	}

	mappedPtr := buffer.GetMappedRange(0, size)
	if mappedPtr == nil {
		buffer.Release()
		return nil, fmt.Errorf("webgpu: failed to map %d-byte buffer", size)
	}
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer, nil
}

// createBuffer creates a GPU buffer and uploads initial data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return b.createMappedBuffer(data, uint64(len(data)), usage)
}

// createUniformBuffer creates a uniform buffer padded to 16 bytes.
func (b *Backend) createUniformBuffer(data []byte) (*wgpu.Buffer, error) {
	alignedSize := (uint64(len(data)) + 15) &^ 15
	return b.createMappedBuffer(data, alignedSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Uses a staging buffer since storage buffers can't be mapped directly.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	stagingBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if stagingBuffer == nil {
		return nil, fmt.Errorf("webgpu: failed to create %d-byte staging buffer", size)
	}
	defer stagingBuffer.Release()

	if err := b.submit(func(encoder *wgpu.CommandEncoder) error {
		encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
		return nil
	}); err != nil {
		return nil, err
	}

	err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size)
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}
	defer stagingBuffer.Unmap()

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	if mappedPtr == nil {
		return nil, errors.New("webgpu: staging buffer has no mapped range")
	}
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)

	return result, nil
}

// submit records commands with record and submits them to the queue.
// Nothing is submitted when record fails.
func (b *Backend) submit(record func(encoder *wgpu.CommandEncoder) error) error {
	encoder := b.device.CreateCommandEncoder(nil)
	if encoder == nil {
		return errors.New("webgpu: failed to create command encoder")
	}
	defer encoder.Release()

	if err := record(encoder); err != nil {
		return err
	}

	cmdBuffer := encoder.Finish(nil)
	if cmdBuffer == nil {
		return errors.New("webgpu: failed to finish command buffer")
	}
	defer cmdBuffer.Release()
	b.queue.Submit(cmdBuffer)
	return nil
}

// MLP runs x ([batch, layers[0].In], row-major) through every layer in one
// command submission and returns the [batch, layers[len-1].Out] result.
// Intermediate activations stay on the GPU.
func (b *Backend) MLP(x []float32, batch int, layers []DenseLayer) (out []float32, err error) {
	if len(layers) == 0 {
		return nil, errors.New("webgpu: mlp: no layers")
	}
	if batch <= 0 || len(x) != batch*layers[0].In {
		return nil, fmt.Errorf("webgpu: mlp: input has %d values, expected %d x %d", len(x), batch, layers[0].In)
	}
	for i, l := range layers {
		if len(l.Weights) != l.In*l.Out {
			return nil, fmt.Errorf("webgpu: mlp: layer %d has %d weights, expected %d x %d", i, len(l.Weights), l.Out, l.In)
		}
		if i > 0 && l.In != layers[i-1].Out {
			return nil, fmt.Errorf("webgpu: mlp: layer %d expects %d inputs, previous layer produces %d", i, l.In, layers[i-1].Out)
		}
	}

	b.execMu.Lock()
	defer b.execMu.Unlock()
	if b.device == nil {
		return nil, errReleased
	}

	// Native calls panic on driver failures.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("webgpu: mlp: %v", r)
		}
	}()

	shader, err := b.compileShader("dense", denseShader)
	if err != nil {
		return nil, err
	}
	pipeline, err := b.getOrCreatePipeline("dense", shader)
	if err != nil {
		return nil, err
	}
	layout := pipeline.GetBindGroupLayout(0)
	if layout == nil {
		return nil, errors.New("webgpu: dense pipeline has no bind group layout")
	}
	defer layout.Release()

	var buffers []*wgpu.Buffer
	var bindGroups []*wgpu.BindGroup
	defer func() {
		for _, bg := range bindGroups {
			bg.Release()
		}
		for _, buf := range buffers {
			buf.Release()
		}
	}()

	current, err := b.createBuffer(float32Bytes(x), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return nil, err
	}
	buffers = append(buffers, current)
	//nolint:gosec // G115: sizes are validated positive above
	currentSize := uint64(len(x) * 4)

	// Buffers and bind groups are created up front so that recording the
	// passes cannot fail half way.
	for _, l := range layers {
		weights, err := b.createBuffer(float32Bytes(l.Weights), wgpu.BufferUsageStorage)
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, weights)

		//nolint:gosec // G115: sizes are validated positive above
		resultSize := uint64(batch * l.Out * 4)
		result := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
			Size:  resultSize,
		})
		if result == nil {
			return nil, fmt.Errorf("webgpu: failed to create %d-byte buffer", resultSize)
		}
		buffers = append(buffers, result)

		params := make([]byte, 16)
		//nolint:gosec // G115: dimensions are validated positive above
		binary.LittleEndian.PutUint32(params[0:4], uint32(batch))
		//nolint:gosec // G115: dimensions are validated positive above
		binary.LittleEndian.PutUint32(params[4:8], uint32(l.In))
		//nolint:gosec // G115: dimensions are validated positive above
		binary.LittleEndian.PutUint32(params[8:12], uint32(l.Out))
		if l.ReLU {
			binary.LittleEndian.PutUint32(params[12:16], 1)
		}
		uniform, err := b.createUniformBuffer(params)
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, uniform)

		bindGroup := b.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, current, 0, currentSize),
			//nolint:gosec // G115: sizes are validated positive above
			wgpu.BufferBindingEntry(1, weights, 0, uint64(len(l.Weights)*4)),
			wgpu.BufferBindingEntry(2, result, 0, resultSize),
			wgpu.BufferBindingEntry(3, uniform, 0, 16),
		})
		if bindGroup == nil {
			return nil, errors.New("webgpu: failed to create bind group")
		}
		bindGroups = append(bindGroups, bindGroup)

		current, currentSize = result, resultSize
	}

	err = b.submit(func(encoder *wgpu.CommandEncoder) error {
		for i, l := range layers {
			pass := encoder.BeginComputePass(nil)
			if pass == nil {
				return fmt.Errorf("webgpu: failed to begin compute pass %d", i)
			}
			pass.SetPipeline(pipeline)
			pass.SetBindGroup(0, bindGroups[i], nil)
			//nolint:gosec // G115: workgroup counts are non-negative
			pass.DispatchWorkgroups(
				uint32((l.Out+denseWorkgroup-1)/denseWorkgroup),
				uint32((batch+denseWorkgroup-1)/denseWorkgroup),
				1,
			)
			pass.End()
			pass.Release()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw, err := b.readBuffer(current, currentSize)
	if err != nil {
		return nil, err
	}

	out = make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func float32Bytes(data []float32) []byte {
	//nolint:gosec // unsafe.Slice for zero-copy view of float32 data
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}
