// Package dom is a small element API over golang.org/x/net/html node trees.
//
// Pages are rendered from templates, parsed into a Document, adjusted in place
// (validation annotations, state classes, filters) and rendered back out. The
// helpers mirror the handful of browser DOM operations the site needs: lookup
// by id, class and attribute matching, class toggling, inline display, text
// and inner markup, form control values, focus and scroll hints.
package dom
