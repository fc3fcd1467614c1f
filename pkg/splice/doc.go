// Package splice replaces diagram blocks in chapter text with rendered output.
//
// Each block is replaced by exactly one of:
//
//   - inline, one view: an svg-container div holding the SVG
//   - inline, several views: an svg-container div holding a tab list
//     (ul#svg-tabs-BLOCK) and one svg-content div per view
//   - file output: one markdown image reference per view, pointing at
//     NAME.generated.svg beside the chapter, optionally wrapped in a link
//
// Only the bytes of each block's span change. The replacement is followed by
// one newline so the HTML or markdown block it starts is terminated before
// the text that followed the fence.
//
// Element ids use the view names handed out by the name table, so a viewer
// script can find every container from the markup alone:
//
//	<div class="svg-container">
//	  <div id="svg-content-chapter_0" class="svg-content"><svg>…</svg></div>
//	</div>
package splice
