// Package links determines which vault paths an index file already links to.
package links
