// Package extract locates diagram blocks inside chapter markdown.
//
// A diagram block is a fenced code block whose info string starts with a
// configured marker, for example:
//
//	```dot process Request Flow
//	digraph { a -> b }
//	```
//
// The marker ("dot process") selects the block and the remaining text
// ("Request Flow") becomes its label. Fences are discovered with goldmark,
// so blocks nested in list items or block quotes are found the same way a
// CommonMark renderer would see them. Every [Block] records the exact byte
// span of the fence so the caller can substitute rendered output without
// touching any other byte of the chapter.
//
// A marker fence that never closes is reported as an [UnterminatedError];
// other unterminated fences are ordinary markdown and are left alone.
package extract
