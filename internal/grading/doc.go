// Package grading turns raw assignment and report-card data into the numbers
// shown to a student: category averages, a weighted course total and
// semester averages.
//
// Every function in this package is pure. Inputs are never mutated and
// results are freshly allocated, so callers may invoke them concurrently and
// recompute whenever a single record changes.
//
// Rounding is half away from zero everywhere: averages and totals keep two
// decimals, report-card marks are rounded to whole numbers.
package grading
