// Package segment splits a normalized running-configuration into per-entity
// text blocks.
//
// A block starts at a declaration line such as "wlan Corporate 1" or
// "rf-profile High-Density" and extends to the next declaration of the same
// kind or to the end of the text. Segmentation does not understand the
// configuration grammar: malformed bodies still produce blocks, and the
// "!" separators carry no meaning.
//
// Blocks are produced lazily through an iter.Seq so callers can stop early.
package segment
