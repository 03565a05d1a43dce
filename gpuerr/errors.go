// Package gpuerr holds the failure taxonomy shared by every stage of context bring-up.
//
// Stages never terminate the process. Each failure is returned to the caller marked with
// one of the sentinels below so it can be tested with errors.Is regardless of how much
// call-site context has been wrapped around it.
package gpuerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
)

var (
	ErrMissingExtensionOrLayer = errors.New("required extension or layer not available")
	ErrNoSuitableDevice        = errors.New("no suitable physical device")
	ErrAPICall                 = errors.New("vulkan call failed")
	ErrFileIO                  = errors.New("file i/o failed")
	ErrAllocation              = errors.New("allocation failed")

	ErrQuery         = errors.New("capability query failed")
	ErrInvalidBounds = errors.New("lower bound exceeds upper bound")
	ErrStageOrder    = errors.New("stage called out of order")
)

// APICallError is a non-success result returned by the driver.
type APICallError struct {
	Call   string
	Result common.VkResult
	Err    error
}

func (e *APICallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Call, e.Result, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Call, e.Result)
}

func (e *APICallError) Unwrap() error { return e.Err }

// Is reports ErrAPICall for every result, and ErrAllocation for the out-of-memory codes.
func (e *APICallError) Is(target error) bool {
	switch target {
	case ErrAPICall:
		return true
	case ErrAllocation:
		return e.Result == core1_0.VKErrorOutOfHostMemory || e.Result == core1_0.VKErrorOutOfDeviceMemory
	}
	return false
}

// APICall wraps a failed driver call. It returns nil when err is nil.
func APICall(call string, result common.VkResult, err error) error {
	if err == nil {
		return nil
	}
	return &APICallError{Call: call, Result: result, Err: err}
}

// Missingf reports an unavailable layer or extension.
func Missingf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMissingExtensionOrLayer)
}

// Queryf wraps err as a capability query failure.
func Queryf(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrQuery)
}

// FileIOf wraps err as a file i/o failure.
func FileIOf(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrFileIO)
}
