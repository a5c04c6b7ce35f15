// Package chunker splits long document text into overlapping word windows.
//
// Overlap preserves context across chunk boundaries so that a finding split
// mid-sentence still embeds with its surroundings on both sides.
package chunker
