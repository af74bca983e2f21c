// Package stats provides fixed-capacity rolling sample windows with
// on-demand summary statistics (min/max/avg/p95).
//
// Windows bound memory to the most recent N samples so that unbounded
// event counts never grow the process. Percentiles use linear
// interpolation over the sorted samples; callers must not special-case
// empty windows (an empty window summarizes to all zeros).
package stats
