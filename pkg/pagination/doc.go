// Package pagination fetches complete result sets from paginated NEIS
// services.
//
// The hub reports list_total_count on the first page and serves at most
// MaxPageSize rows per request. A fetch probes page 1, plans the remaining
// pages from the declared total (or the caller's expected-count hint), and
// issues them either sequentially or through a bounded errgroup.
//
// Example usage:
//
//	exec := pagination.NewExecutor(session, pagination.DefaultConfig())
//	rows, err := exec.Fetch(ctx, pagination.Query{
//		Service: client.ServiceSchoolInfo,
//		Params:  client.Params{"ATPT_OFCDC_SC_CODE": "B10"},
//	})
//
// Fetch semantics:
//   - NotFound on page 1 is returned as client.ErrNotFound
//   - NotFound on a later page counts as an empty page
//   - Any other failure aborts the fetch; no partial rows are returned
//   - Rows come back in page order, truncated to the hint when one is given
package pagination
