// Package native defines the boundary to in-process diagram engines.
//
// An engine is reached through an [Entry]: one call takes the diagram source
// and hands back exactly one [Buffer]. The caller owns that buffer and must
// release it exactly once, on every path:
//
//	buf := entry.Call(source)
//	if buf == nil {
//	    return errNilBuffer
//	}
//	defer buf.Release()
//	result, failure, err := native.Decode(buf)
//
// A buffer holds either a JSON success payload, the recursive board tree of
// [diagram.Result], or an error payload: the sentinel [ErrorPrefix]
// followed by a JSON [Failure]. Buffers are pooled, so a released buffer
// must not be read again and a second release panics.
package native
