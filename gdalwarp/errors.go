package gdalwarp

import "fmt"

// CRSResolutionError reports a CRS value that could not be resolved to a
// usable spatial reference.
type CRSResolutionError struct {
	CRS string
	Msg string
}

func (e *CRSResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve CRS '%s': %s", e.CRS, e.Msg)
}

// TransformCompositionError reports a failure to construct the composed
// image-to-image transformer.
type TransformCompositionError struct {
	Msg string
}

func (e *TransformCompositionError) Error() string {
	return fmt.Sprintf("transformer composition failed: %s", e.Msg)
}

// WarpInitializationError reports the warper rejecting the configured
// options. It is fatal and aborts the whole run before any chunk starts.
type WarpInitializationError struct {
	Msg string
}

func (e *WarpInitializationError) Error() string {
	return fmt.Sprintf("warp initialization failed: %s", e.Msg)
}

// ValueRangeError reports a nodata value outside the representable range of
// the band data type.
type ValueRangeError struct {
	Value float64
	Type  string
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("nodata value %v out of range for %s", e.Value, e.Type)
}

type InvalidSourceError struct {
	Msg string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source: %s", e.Msg)
}

type InvalidDestinationError struct {
	Msg string
}

func (e *InvalidDestinationError) Error() string {
	return fmt.Sprintf("invalid destination: %s", e.Msg)
}

// WarpOptionsError reports a semantically invalid option combination, such
// as adding an alpha band to a source that already carries one.
type WarpOptionsError struct {
	Msg string
}

func (e *WarpOptionsError) Error() string {
	return fmt.Sprintf("invalid warp options: %s", e.Msg)
}

// IncompleteBoundsError reports a partially specified bounding box.
type IncompleteBoundsError struct {
	Given int
}

func (e *IncompleteBoundsError) Error() string {
	return fmt.Sprintf("bounds require all of left, bottom, right, top: got %d of 4 values", e.Given)
}

// WindowError reports a read window extending outside the dataset extent.
// Boundless reads are never silently clipped.
type WindowError struct {
	Msg string
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window out of range: %s", e.Msg)
}
