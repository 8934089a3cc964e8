// Package dst reads and assembles machine embroidery designs stored in the
// DST stitch format.
//
// A DST file is a 512 byte header block followed by a stream of 3 byte stitch
// records. The header is ASCII metadata (label, stitch count, extents) and is
// treated as opaque here. Each record is a movement stitch unless its third
// byte is one of the two control codes:
//
//	0xF0  color change
//	0xF3  end of design
//
// The main entry point is MergeDesigns, which joins several single letter
// designs into one design that stitches the letters in order with a single
// thread color:
//
//	header(first) ++ 00 00 F0 ++ stitches(1) ++ ... ++ stitches(n) ++ 00 00 F3
//
// Every control record in the inputs is dropped, including color changes in
// the middle of a multi-color letter. The header of the first design is copied
// unmodified. Its stitch count and extents therefore describe the first letter
// and not the merged result.
//
// Nothing in this package keeps state between calls, and no function modifies
// the buffers passed to it.
package dst
