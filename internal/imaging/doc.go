// Package imaging provides the raster helpers behind image and colour previews.
//
// This package knows which image formats exist, which of them every host can
// decode natively, and how to read dimensions from an encoded header without
// decoding pixel data. It also renders the small images a preview popup needs:
// checkerboard swatches for translucent colours, and downscaled copies of
// oversized rasters.
//
// # Formats
//
// PNG, JPEG, GIF and BMP are native. SVG, WebP and AVIF are convertible: they
// may need an external converter before a renderer can show them. WebP has a
// pure Go decoder registered here, so header inspection works for it even when
// the renderer cannot display it.
//
// # Popup Geometry
//
// ScaleForPopup keeps previews between MinPopupImageWidth and
// MaxPopupImageWidth layout pixels wide, preserving aspect ratio, before the
// device scale factor is applied.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Swatch renders are memoized in a
// bounded LRU; the returned byte slices are shared and must not be modified.
package imaging
