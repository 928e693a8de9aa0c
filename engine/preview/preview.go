// package preview presents composited RGBA frames on a window surface. The
// GPU does no scene work here; it only uploads the finished frame each
// refresh and blits it with a fullscreen triangle.
package preview

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/loopforge/loopforge/common"
)

const blitShaderWGSL = `
@group(0) @binding(0) var frameTexture: texture_2d<f32>;
@group(0) @binding(1) var frameSampler: sampler;

struct VertexOutput {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
	var out: VertexOutput;
	let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
	out.position = vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
	out.uv = vec2<f32>(uv.x, 1.0 - uv.y);
	return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	return textureSample(frameTexture, frameSampler, in.uv);
}
`

// Presenter displays frames on a surface.
type Presenter interface {
	// Resize reconfigures the surface after the window changes size.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// Present uploads the frame and blits it to the surface.
	//
	// Parameters:
	//   - frame: the finished frame to display
	//
	// Returns:
	//   - error: error if the surface cannot be acquired or drawn
	Present(frame *common.Frame) error

	// Close releases all GPU resources.
	Close()
}

// wgpuPresenter is the WebGPU implementation of Presenter.
type wgpuPresenter struct {
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceFormat wgpu.TextureFormat
	pipeline      *wgpu.RenderPipeline
	layout        *wgpu.BindGroupLayout
	sampler       *wgpu.Sampler

	texture   *wgpu.Texture
	bindGroup *wgpu.BindGroup
	texW      int
	texH      int
}

var _ Presenter = &wgpuPresenter{}

// NewPresenter creates a Presenter over a platform surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to present on
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//
// Returns:
//   - Presenter: the configured presenter, nil on error
//   - error: error if no suitable adapter or device is available
func NewPresenter(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int) (Presenter, error) {
	runtime.LockOSThread()

	p := &wgpuPresenter{
		instance: wgpu.CreateInstance(nil),
	}
	p.surface = p.instance.CreateSurface(surfaceDescriptor)

	adapter, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: p.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("error requesting adapter: %w", err)
	}
	p.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Preview Device",
	})
	if err != nil {
		return nil, fmt.Errorf("error requesting device: %w", err)
	}
	p.device = device
	p.queue = device.GetQueue()

	p.Resize(width, height)

	if err := p.buildPipeline(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *wgpuPresenter) Resize(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	capabilities := p.surface.GetCapabilities(p.adapter)
	p.surfaceFormat = capabilities.Formats[0]
	p.surface.Configure(p.adapter, p.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      p.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

// buildPipeline compiles the blit shader and creates the fixed pipeline and
// sampler. The frame texture and bind group are created lazily per size.
func (p *wgpuPresenter) buildPipeline() error {
	module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "preview blit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: blitShaderWGSL,
		},
	})
	if err != nil {
		return fmt.Errorf("error compiling blit shader: %w", err)
	}

	layout, err := p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "preview blit layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error creating bind group layout: %w", err)
	}
	p.layout = layout

	pipelineLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "preview blit",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("error creating pipeline layout: %w", err)
	}

	pipeline, err := p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "preview blit",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    p.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("error creating render pipeline: %w", err)
	}
	p.pipeline = pipeline

	sampler, err := p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "preview blit",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("error creating sampler: %w", err)
	}
	p.sampler = sampler
	return nil
}

// ensureTexture keeps the upload texture matched to the frame size.
func (p *wgpuPresenter) ensureTexture(w, h int) error {
	if p.texture != nil && p.texW == w && p.texH == h {
		return nil
	}
	if p.texture != nil {
		p.texture.Release()
		p.texture = nil
	}
	tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "preview frame",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("error creating frame texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("error creating frame texture view: %w", err)
	}
	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "preview frame",
		Layout: p.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		tex.Release()
		return fmt.Errorf("error creating frame bind group: %w", err)
	}
	p.texture = tex
	p.bindGroup = bindGroup
	p.texW, p.texH = w, h
	return nil
}

func (p *wgpuPresenter) Present(frame *common.Frame) error {
	if err := p.ensureTexture(frame.Width, frame.Height); err != nil {
		return err
	}

	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  p.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		frame.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(frame.Width * 4),
			RowsPerImage: uint32(frame.Height),
		},
		&wgpu.Extent3D{
			Width:              uint32(frame.Width),
			Height:             uint32(frame.Height),
			DepthOrArrayLayers: 1,
		},
	)

	surfaceTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("error acquiring surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("error creating surface view: %w", err)
	}
	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("error creating command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1},
			},
		},
	})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("error finishing command encoder: %w", err)
	}
	p.queue.Submit(commandBuffer)
	p.surface.Present()

	commandBuffer.Release()
	encoder.Release()
	view.Release()
	surfaceTexture.Release()
	return nil
}

func (p *wgpuPresenter) Close() {
	if p.texture != nil {
		p.texture.Release()
		p.texture = nil
	}
	if p.device != nil {
		p.device.Release()
		p.device = nil
	}
	if p.surface != nil {
		p.surface.Release()
		p.surface = nil
	}
	if p.instance != nil {
		p.instance.Release()
		p.instance = nil
	}
}
