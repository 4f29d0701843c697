// Package marker keeps the persistent set of out of date index files and
// shows it as indicators on the rows of the visual host.
//
// A marked file is cleared by a later change that dodex did not make
// itself: any change for ON_TOUCH marks, a change leaving the file without
// links for ON_EMPTY marks. Renames and deletions always clear the mark.
// Folders above a marked file carry the indicator while collapsed.
package marker
