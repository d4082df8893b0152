// Package analysis computes structural summaries of networks with gonum.
package analysis
