// Package contenthash computes the content identifiers used to name
// repackaged assets.
//
// MD5 is the default because Scratch editors and the asset server key
// costumes and sounds by MD5 digest; BLAKE3 is offered for archives that are
// only consumed by tooling that does not verify asset ids.
package contenthash
