// Package vpath implements the virtual-path addressing scheme shared by every
// container format: a UTF-8 string beginning with "/", canonicalised by
// applying a family's alias rules in declaration order, and convertible
// losslessly to and from a zip archive's entry names.
//
// Grounded on original_source/Charon/VirtualFile.py and src/VirtualFile.py's
// canonicalisation/alias-order semantics.
package vpath
