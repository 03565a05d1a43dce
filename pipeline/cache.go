package pipeline

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/bringup/gpuerr"
	"github.com/vkngwrapper/bringup/internal/gpulog"
	"github.com/vkngwrapper/core/core1_0"
)

const headerVersionOne = 1

// The header is 16 bytes of IDs followed by the cache UUID.
const cacheHeaderSize = 16 + 16

var errStaleCache = errors.New("pipeline cache does not match this device")

var removeFile = os.Remove

// CacheIdentity is what a cache blob's header must match before the driver is handed it.
type CacheIdentity struct {
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

func IdentityFromProperties(props *core1_0.PhysicalDeviceProperties) CacheIdentity {
	return CacheIdentity{
		VendorID: props.VendorID,
		DeviceID: props.DeviceID,
		UUID:     props.PipelineCacheUUID,
	}
}

type cacheHeader struct {
	Length   uint32
	Version  uint32
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

// ValidateCacheHeader reports why data cannot seed a pipeline cache for identity, or nil
// if it can.
func ValidateCacheHeader(data []byte, identity CacheIdentity) error {
	if len(data) < cacheHeaderSize {
		return errors.Wrapf(errStaleCache, "%d bytes is shorter than a cache header", len(data))
	}

	var header cacheHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "read pipeline cache header")
	}

	switch {
	case header.Length < cacheHeaderSize:
		return errors.Wrapf(errStaleCache, "bad header length 0x%x", header.Length)
	case header.Version != headerVersionOne:
		return errors.Wrapf(errStaleCache, "unsupported header version 0x%x", header.Version)
	case header.VendorID != identity.VendorID:
		return errors.Wrapf(errStaleCache, "vendor ID 0x%x, driver expects 0x%x", header.VendorID, identity.VendorID)
	case header.DeviceID != identity.DeviceID:
		return errors.Wrapf(errStaleCache, "device ID 0x%x, driver expects 0x%x", header.DeviceID, identity.DeviceID)
	case header.UUID != identity.UUID:
		return errors.Wrapf(errStaleCache, "cache UUID %s, driver expects %s", header.UUID, identity.UUID)
	}

	return nil
}

// ReadCacheFile loads the cache blob at path. A missing file, or one written for another
// device or driver, yields nil data and no error; a stale file is removed.
func ReadCacheFile(path string, identity CacheIdentity) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		gpulog.Pipeline.Debug("no pipeline cache at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, gpuerr.FileIOf(err, "read pipeline cache %s", path)
	}

	if err := ValidateCacheHeader(data, identity); err != nil {
		gpulog.Pipeline.Warn("discarding pipeline cache %s: %v", path, err)
		if err := removeFile(path); err != nil {
			gpulog.Pipeline.Warn("stale pipeline cache %s not removed: %v", path, err)
		}
		return nil, nil
	}

	return data, nil
}

// Cache is a driver pipeline cache persisted at Path between runs.
type Cache struct {
	Path   string
	handle core1_0.PipelineCache
}

// OpenCache creates a pipeline cache seeded from Path when the file there matches
// identity.
func OpenCache(device Device, path string, identity CacheIdentity) (*Cache, error) {
	data, err := ReadCacheFile(path, identity)
	if err != nil {
		return nil, err
	}

	handle, err := device.CreatePipelineCache(core1_0.PipelineCacheCreateInfo{InitialData: data})
	if err != nil {
		return nil, err
	}

	gpulog.Pipeline.Info("pipeline cache opened with %d bytes from %s", len(data), path)
	return &Cache{Path: path, handle: handle}, nil
}

func (c *Cache) Handle() core1_0.PipelineCache {
	if c == nil {
		return nil
	}
	return c.handle
}

// Save writes the driver's current cache contents to Path.
func (c *Cache) Save(device Device) error {
	if c.handle == nil {
		return errors.Mark(errors.New("pipeline cache already destroyed"), gpuerr.ErrStageOrder)
	}

	data, err := device.PipelineCacheData(c.handle)
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.Path, data, 0666); err != nil {
		return gpuerr.FileIOf(err, "write pipeline cache %s", c.Path)
	}

	gpulog.Pipeline.Debug("wrote %d bytes of pipeline cache to %s", len(data), c.Path)
	return nil
}

func (c *Cache) Destroy(device Device) {
	if c == nil || c.handle == nil {
		return
	}
	device.DestroyPipelineCache(c.handle)
	c.handle = nil
}
