package pipeline

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/util/logger"
	"github.com/google/uuid"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

type fakeShaderModule struct{ core1_0.ShaderModule }

type fakeRenderPass struct{ core1_0.RenderPass }
type fakeLayout struct{ core1_0.PipelineLayout }
type fakePipeline struct{ core1_0.Pipeline }
type fakeCache struct{ core1_0.PipelineCache }

type fakeDevice struct {
	events       []string
	modules      int
	failPipeline bool
	pipelineInfo core1_0.GraphicsPipelineCreateInfo
	usedCache    core1_0.PipelineCache
	initialData  []byte
	cacheData    []byte
}

func (d *fakeDevice) CreateShaderModule(info core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, error) {
	d.modules++
	d.events = append(d.events, "create module")
	return &fakeShaderModule{}, nil
}

func (d *fakeDevice) DestroyShaderModule(core1_0.ShaderModule) {
	d.modules--
	d.events = append(d.events, "destroy module")
}

func (d *fakeDevice) CreateRenderPass(core1_0.RenderPassCreateInfo) (core1_0.RenderPass, error) {
	d.events = append(d.events, "create render pass")
	return &fakeRenderPass{}, nil
}

func (d *fakeDevice) DestroyRenderPass(core1_0.RenderPass) {
	d.events = append(d.events, "destroy render pass")
}

func (d *fakeDevice) CreatePipelineLayout(core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error) {
	d.events = append(d.events, "create layout")
	return &fakeLayout{}, nil
}

func (d *fakeDevice) DestroyPipelineLayout(core1_0.PipelineLayout) {
	d.events = append(d.events, "destroy layout")
}

func (d *fakeDevice) CreatePipelineCache(info core1_0.PipelineCacheCreateInfo) (core1_0.PipelineCache, error) {
	d.initialData = info.InitialData
	return &fakeCache{}, nil
}

func (d *fakeDevice) PipelineCacheData(core1_0.PipelineCache) ([]byte, error) {
	return d.cacheData, nil
}

func (d *fakeDevice) DestroyPipelineCache(core1_0.PipelineCache) {
	d.events = append(d.events, "destroy cache")
}

func (d *fakeDevice) CreateGraphicsPipeline(cache core1_0.PipelineCache, info core1_0.GraphicsPipelineCreateInfo) (core1_0.Pipeline, error) {
	d.pipelineInfo = info
	d.usedCache = cache
	if d.failPipeline {
		return nil, gpuerr.APICall("vkCreateGraphicsPipelines", core1_0.VKErrorOutOfDeviceMemory, errors.New("out of device memory"))
	}
	d.events = append(d.events, "create pipeline")
	return &fakePipeline{}, nil
}

func (d *fakeDevice) DestroyPipeline(core1_0.Pipeline) {
	d.events = append(d.events, "destroy pipeline")
}

var spirv = ShaderBinaries{
	Vertex:   []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
	Fragment: []byte{0x03, 0x02, 0x23, 0x07},
}

func TestReadShaderBinaryGrows(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 3000)

	read, err := ReadShaderBinary(iotest.OneByteReader(bytes.NewReader(data)), GrowthPolicy{Initial: 1024, Factor: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(read, data) {
		t.Fatalf("read %d bytes, expected %d", len(read), len(data))
	}
	if cap(read) != 4096 {
		t.Errorf("expected capacity to double twice to 4096, got %d", cap(read))
	}
}

func TestReadShaderBinaryEmpty(t *testing.T) {
	read, err := ReadShaderBinary(bytes.NewReader(nil), DefaultGrowth)
	if err != nil {
		t.Fatal(err)
	}
	if len(read) != 0 {
		t.Errorf("expected no bytes, got %d", len(read))
	}
}

func TestReadShaderBinaryError(t *testing.T) {
	_, err := ReadShaderBinary(iotest.ErrReader(io.ErrUnexpectedEOF), DefaultGrowth)
	if !errors.Is(err, gpuerr.ErrFileIO) {
		t.Errorf("expected ErrFileIO, got %v", err)
	}

	_, err = ReadShaderBinary(bytes.NewReader(nil), GrowthPolicy{Initial: 16, Factor: 1})
	if err == nil {
		t.Error("a factor of 1 never grows and must be rejected")
	}
}

func TestLoadShaderBinaries(t *testing.T) {
	dir := t.TempDir()
	vertPath := filepath.Join(dir, "vert.spv")
	fragPath := filepath.Join(dir, "frag.spv")
	if err := os.WriteFile(vertPath, spirv.Vertex, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fragPath, spirv.Fragment, 0644); err != nil {
		t.Fatal(err)
	}

	binaries, err := LoadShaderBinaries(vertPath, fragPath, DefaultGrowth)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(binaries.Vertex, spirv.Vertex) || !bytes.Equal(binaries.Fragment, spirv.Fragment) {
		t.Errorf("unexpected binaries %+v", binaries)
	}

	_, err = LoadShaderBinaries(vertPath, filepath.Join(dir, "missing.spv"), DefaultGrowth)
	if !errors.Is(err, gpuerr.ErrFileIO) {
		t.Errorf("expected ErrFileIO for a missing shader, got %v", err)
	}
}

func TestBytecode(t *testing.T) {
	code, err := Bytecode([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 2 || code[0] != 0x07230203 || code[1] != 0x00010000 {
		t.Errorf("unexpected words %#x", code)
	}

	for _, bad := range [][]byte{nil, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		if _, err := Bytecode(bad); err == nil {
			t.Errorf("expected an error for %d bytes", len(bad))
		}
	}
}

func TestRenderPassInfo(t *testing.T) {
	info := RenderPassInfo(core1_0.FormatB8G8R8A8SRGB)

	if len(info.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(info.Attachments))
	}
	attachment := info.Attachments[0]
	if attachment.Format != core1_0.FormatB8G8R8A8SRGB {
		t.Errorf("unexpected format %v", attachment.Format)
	}
	if attachment.LoadOp != core1_0.AttachmentLoadOpClear || attachment.StoreOp != core1_0.AttachmentStoreOpStore {
		t.Error("color attachment must clear on load and store")
	}
	if attachment.InitialLayout != core1_0.ImageLayoutUndefined || attachment.FinalLayout != khr_swapchain.ImageLayoutPresentSrc {
		t.Error("color attachment must transition from undefined to present")
	}

	if len(info.Subpasses) != 1 || len(info.Subpasses[0].ColorAttachments) != 1 {
		t.Fatal("expected one subpass with one color attachment")
	}
	if len(info.SubpassDependencies) != 1 || info.SubpassDependencies[0].SrcSubpass != core1_0.SubpassExternal {
		t.Error("expected one dependency on the external subpass")
	}
}

func TestAssemble(t *testing.T) {
	device := &fakeDevice{}
	assembler := &Assembler{Device: device}
	extent := core1_0.Extent2D{Width: 800, Height: 600}

	ctx, err := assembler.Assemble(spirv, core1_0.FormatB8G8R8A8SRGB, extent)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Pipeline == nil || ctx.Layout == nil || ctx.RenderPass == nil {
		t.Fatalf("incomplete context %+v", ctx)
	}
	if device.modules != 0 {
		t.Errorf("shader modules must be released after pipeline creation, %d left", device.modules)
	}

	info := device.pipelineInfo
	if len(info.Stages) != 2 || info.Stages[0].Stage != core1_0.StageVertex || info.Stages[1].Stage != core1_0.StageFragment {
		t.Errorf("unexpected stages %+v", info.Stages)
	}
	if info.Stages[0].Name != "main" {
		t.Errorf("unexpected entry point %q", info.Stages[0].Name)
	}
	if info.InputAssemblyState.Topology != core1_0.PrimitiveTopologyTriangleList {
		t.Error("expected a triangle list")
	}
	if info.RasterizationState.FrontFace != core1_0.FrontFaceClockwise || info.RasterizationState.CullMode != core1_0.CullModeBack {
		t.Error("expected clockwise front faces with back-face culling")
	}
	viewport := info.ViewportState.Viewports[0]
	if viewport.Width != 800 || viewport.Height != 600 || viewport.MaxDepth != 1 {
		t.Errorf("unexpected viewport %+v", viewport)
	}
	if info.ViewportState.Scissors[0].Extent != extent {
		t.Errorf("unexpected scissor %+v", info.ViewportState.Scissors[0])
	}
	if info.ColorBlendState.Attachments[0].BlendEnabled {
		t.Error("blending must be disabled")
	}
	if info.BasePipelineIndex != -1 {
		t.Errorf("unexpected base pipeline index %d", info.BasePipelineIndex)
	}

	device.events = nil
	ctx.Destroy(device)
	ctx.Destroy(device)
	expected := []string{"destroy pipeline", "destroy layout", "destroy render pass"}
	if len(device.events) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, device.events)
	}
	for i := range expected {
		if device.events[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, device.events)
			break
		}
	}
}

func TestAssembleFailureReleasesEverything(t *testing.T) {
	device := &fakeDevice{failPipeline: true}
	assembler := &Assembler{Device: device}

	_, err := assembler.Assemble(spirv, core1_0.FormatB8G8R8A8SRGB, core1_0.Extent2D{Width: 1, Height: 1})
	if !errors.Is(err, gpuerr.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
	if device.modules != 0 {
		t.Errorf("%d shader modules leaked", device.modules)
	}

	var destroyedLayout, destroyedPass bool
	for _, event := range device.events {
		destroyedLayout = destroyedLayout || event == "destroy layout"
		destroyedPass = destroyedPass || event == "destroy render pass"
	}
	if !destroyedLayout || !destroyedPass {
		t.Errorf("expected layout and render pass released, got %v", device.events)
	}
}

func TestAssembleRejectsBadShader(t *testing.T) {
	device := &fakeDevice{}
	assembler := &Assembler{Device: device}

	_, err := assembler.Assemble(ShaderBinaries{Vertex: spirv.Vertex, Fragment: []byte{1, 2}}, core1_0.FormatB8G8R8A8SRGB, core1_0.Extent2D{Width: 1, Height: 1})
	if err == nil {
		t.Fatal("expected an error for a truncated fragment shader")
	}
	if device.modules != 0 {
		t.Errorf("%d shader modules leaked", device.modules)
	}
}

var identity = CacheIdentity{
	VendorID: 0x10DE,
	DeviceID: 0x2484,
	UUID:     uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
}

func cacheBlob(t *testing.T, header cacheHeader) []byte {
	var buffer bytes.Buffer
	if err := binary.Write(&buffer, binary.LittleEndian, header); err != nil {
		t.Fatal(err)
	}
	buffer.Write([]byte("driver payload"))
	return buffer.Bytes()
}

func validHeader() cacheHeader {
	return cacheHeader{
		Length:   cacheHeaderSize,
		Version:  headerVersionOne,
		VendorID: identity.VendorID,
		DeviceID: identity.DeviceID,
		UUID:     identity.UUID,
	}
}

func TestValidateCacheHeader(t *testing.T) {
	if err := ValidateCacheHeader(cacheBlob(t, validHeader()), identity); err != nil {
		t.Fatalf("expected a valid header, got %v", err)
	}

	cases := map[string]func(h *cacheHeader){
		"length":  func(h *cacheHeader) { h.Length = 0 },
		"version": func(h *cacheHeader) { h.Version = 2 },
		"vendor":  func(h *cacheHeader) { h.VendorID = 0x1002 },
		"device":  func(h *cacheHeader) { h.DeviceID = 0 },
		"uuid":    func(h *cacheHeader) { h.UUID = uuid.Nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			header := validHeader()
			mutate(&header)
			if err := ValidateCacheHeader(cacheBlob(t, header), identity); !errors.Is(err, errStaleCache) {
				t.Errorf("expected a stale cache error, got %v", err)
			}
		})
	}

	if err := ValidateCacheHeader([]byte{1, 2, 3}, identity); !errors.Is(err, errStaleCache) {
		t.Errorf("expected a short blob to be stale, got %v", err)
	}
}

func TestOpenCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cache")

	device := &fakeDevice{}
	cache, err := OpenCache(device, path, identity)
	if err != nil {
		t.Fatal(err)
	}
	if device.initialData != nil {
		t.Error("a missing file must seed an empty cache")
	}

	device.cacheData = cacheBlob(t, validHeader())
	if err := cache.Save(device); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenCache(device, path, identity)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(device.initialData, device.cacheData) {
		t.Error("saved cache data must seed the next cache")
	}

	assembler := &Assembler{Device: device, Cache: reopened}
	if _, err := assembler.Assemble(spirv, core1_0.FormatB8G8R8A8SRGB, core1_0.Extent2D{Width: 1, Height: 1}); err != nil {
		t.Fatal(err)
	}
	if device.usedCache != reopened.Handle() {
		t.Error("pipeline creation must use the cache")
	}

	reopened.Destroy(device)
	reopened.Destroy(device)
	if err := reopened.Save(device); !errors.Is(err, gpuerr.ErrStageOrder) {
		t.Errorf("expected ErrStageOrder saving a destroyed cache, got %v", err)
	}
}

func TestOpenCacheDiscardsStaleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cache")

	header := validHeader()
	header.UUID = uuid.New()
	if err := os.WriteFile(path, cacheBlob(t, header), 0644); err != nil {
		t.Fatal(err)
	}

	device := &fakeDevice{}
	if _, err := OpenCache(device, path, identity); err != nil {
		t.Fatal(err)
	}
	if device.initialData != nil {
		t.Error("stale cache data must not reach the driver")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("stale cache file should be removed, stat returned %v", err)
	}
}

// logCounter counts the events written to a logger.
type logCounter struct{ events int }

func (c *logCounter) Write(*logger.Event) { c.events++ }
func (c *logCounter) Close()              {}
func (c *logCounter) Sync()               {}

func TestReadCacheFileReportsFailedRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.cache")
	header := validHeader()
	header.UUID = uuid.New()
	if err := os.WriteFile(path, cacheBlob(t, header), 0644); err != nil {
		t.Fatal(err)
	}

	removeFile = func(string) error { return os.ErrPermission }
	defer func() { removeFile = os.Remove }()

	counter := &logCounter{}
	gpulog.Pipeline.AddWriter(counter)
	defer gpulog.Pipeline.RemoveWriter(counter)

	data, err := ReadCacheFile(path, identity)
	if err != nil {
		t.Fatalf("a stale cache is not an error, got %v", err)
	}
	if data != nil {
		t.Error("stale cache data must not be returned")
	}
	if counter.events != 2 {
		t.Errorf("expected the discard and the failed removal to be logged, got %d events", counter.events)
	}
}
