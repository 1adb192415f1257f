// Package ledgerdiff compares two point-in-time snapshots of an account
// ledger and explains how the aggregate balance moved between them.
//
// The core functionalities include:
//   - Normalization: filtering a raw snapshot down to the comparable
//     universe (excluded account types, zero-limit accounts and total
//     marker rows are dropped).
//   - Differencing: partitioning accounts into settled, new and continuing,
//     with the balance change of every continuing account.
//   - Reconciliation: a six-row waterfall bridging the opening balance to
//     the closing balance with exact decimal arithmetic.
//   - Dimensional rollups: previous versus current sums and counts grouped
//     by account type or by branch, with a Total row.
//
// Everything in this package works on in-memory tables. Reading workbooks,
// rendering reports and the command-line tool live in the xlsx, renderer
// and cmd packages, and the `lds` binary ties them together.
package ledgerdiff
