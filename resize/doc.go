// Package resize implements the PNG resize capability the OPC container
// engine injects into its get_stream path per spec.md §9 ("Ad-hoc PNG
// resize via host GUI toolkit"): an injected (bytes, width, height) -> bytes
// capability, so the engine owns the decision to invoke it but not the
// implementation.
//
// Grounded on cmd/ansi_video_renderer/renderer.go's resizeImage, which
// scales a decoded image into a fixed-size image.RGBA using
// golang.org/x/image/draw.ApproxBiLinear; unlike that renderer (which fits
// within bounds preserving aspect ratio, for a terminal grid), the container
// engine stretches to the exact requested WxH with no aspect-ratio
// preservation, per spec.md §4.4.
package resize
