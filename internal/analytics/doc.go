// Package analytics holds the pure numerical routines of the performance engine:
// daily time-weighted returns, geometric linking, Modified Dietz, rolling windows,
// calendar-month returns and the risk statistics derived from a daily return series.
//
// Nothing in this package performs I/O. Monetary inputs are decimals; returns,
// weights and statistics are float64.
package analytics
