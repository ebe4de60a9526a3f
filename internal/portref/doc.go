// Package portref parses the string-qualified port references used by graph
// descriptions, such as "GBufferRaster.posW" or "SVGFPass.Filtered image".
//
// A reference is split at its first '.': everything before it names the
// pass, everything after it names the port. Pass names therefore cannot
// contain dots, while port names may contain any character, including spaces
// and further dots.
package portref
