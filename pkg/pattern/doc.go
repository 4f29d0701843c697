// Package pattern compiles the naming patterns used to recognize index files
// and ignored files.
//
// A pattern is one or more lines. Tokens such as [FOLDER] and [VAULT] are
// substituted first. A line wrapped in slashes is a raw regular expression;
// any other line is a literal where * matches any run of characters, anchored
// at both ends. Several lines compile to one alternation. Compiled matchers
// are memoized by the substituted pattern text.
package pattern
