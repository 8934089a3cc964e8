/*
Package monogram builds embroidery designs for whole words out of designs for
single letters.

Letter designs are kept in a store, one set for each word length (see
package letters). To make a word, the word is normalized, the design for each
of its letters is loaded, and the designs are merged into one DST file with
package dst. The merged design stitches each letter in turn. It has one
color change at the start, and every color change and end marker in the
letter designs is removed, so the letters are sewn without a stop between
them.

The letterd command serves merged designs over HTTP, and the dstutil command
works with design files on disk.
*/
package monogram
