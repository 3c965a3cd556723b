// Package paging owns the caller side of incremental list loading.
//
// A Pager holds the items fetched so far from a PageSource and answers the
// questions a windowed list asks while rendering:
//
//   - how many items are loaded (Len) and whether a record exists at an index
//   - whether another page exists (HasNextPage)
//   - whether a page is being fetched (IsNextPageLoading, Loading)
//   - the last fetch error (Err)
//
// Sort and page-size parameters are parsed from "field[:asc|desc]" strings
// and validated before the first fetch.
package paging
