package beam

import (
	"github.com/gogpu/gputypes"

	"github.com/tphakala/go-audio-scope/internal/geometry"
)

// PipelineSpec describes the render pipeline a WebGPU host needs to draw a
// geometry.Mesh with the beam program.
type PipelineSpec struct {
	Label string

	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexBuffers      []gputypes.VertexBufferLayout
	IndexFormat        gputypes.IndexFormat

	Primitive gputypes.PrimitiveState
	Targets   []gputypes.ColorTargetState

	// Uniforms is bind group 0.
	Uniforms    []gputypes.BindGroupLayoutEntry
	UniformSize uint64
}

// NewPipelineSpec returns the pipeline description for a color target of the
// given format.
func NewPipelineSpec(format gputypes.TextureFormat) PipelineSpec {
	blend := AdditiveBlend()
	return PipelineSpec{
		Label:              "beam_pipeline",
		VertexEntryPoint:   VertexEntryPoint,
		FragmentEntryPoint: FragmentEntryPoint,
		VertexBuffers:      VertexLayout(),
		IndexFormat:        gputypes.IndexFormatUint32,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Targets: []gputypes.ColorTargetState{
			{
				Format:    format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			},
		},
		Uniforms: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
		UniformSize: UniformSize,
	}
}

// DefaultPipelineSpec targets a BGRA8 surface.
func DefaultPipelineSpec() PipelineSpec {
	return NewPipelineSpec(gputypes.TextureFormatBGRA8Unorm)
}

// VertexLayout matches the geometry arena:
//
//	seg_start (vec2<f32>) = 8 bytes (location 0)
//	seg_end   (vec2<f32>) = 8 bytes (location 1)
//	idx       (f32)       = 4 bytes (location 2)
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: geometry.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // seg_start
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // seg_end
				{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},  // idx
			},
		},
	}
}

// AdditiveBlend sums source and destination (One, One, Add) on both color
// and alpha.
func AdditiveBlend() gputypes.BlendState {
	add := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOne,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: add, Alpha: add}
}

// DepthStencil returns the depth state for hosts whose render pass carries a
// depth attachment: the beam neither tests nor writes depth.
func DepthStencil(format gputypes.TextureFormat) gputypes.DepthStencilState {
	return gputypes.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      gputypes.DefaultStencilFaceState(),
		StencilBack:       gputypes.DefaultStencilFaceState(),
	}
}
