// Package catalog queries the University of Waterloo OpenData API for the
// courses offered in a term. nimbus uses it to fill in course descriptions
// and to check configured course codes.
package catalog
