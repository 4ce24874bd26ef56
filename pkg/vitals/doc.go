// Package vitals produces Core Web Vitals data for the dashboard.
//
// # Records
//
// A [Record] is one page-load measurement: the nine metrics in [Metrics]
// (LCP, FID, CLS, FCP, TTFB, INP, TBT, SI, TTI) plus browser, location,
// device and connection metadata.
//
// # Sources
//
// Records come from a [RecordSource]:
//
//   - [MemorySource]: a generated mock dataset, built once and kept in memory
//   - [MongoSource]: a "records" collection in MongoDB
//
// [Generator] creates realistic records: 70% good, 20% needs-improvement and
// 10% poor page loads.
//
// # Aggregation
//
// [ComputeStats] summarizes records per metric (average, median, min, max,
// p75, p90, p95) and [HourlySeries] averages them per hour. A [Service] turns
// both into a [Bundle] of chart rows for one [TimeRange].
package vitals
