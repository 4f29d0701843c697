// Package validator runs index checks.
//
// A run walks the vault tree, schedules one task per index file, and for
// each index compares the files it should link with the links it holds.
// Missing links are handed to the writer. Tasks run concurrently up to the
// configured limit and a failing task never stops the others.
//
// Errors are collected per kind and reported once per run through the
// notifier, after which the summary notice is shown. Only one run is active
// at a time.
package validator
