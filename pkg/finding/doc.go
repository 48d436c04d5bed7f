// Package finding provides the result model shared by every shieldscan
// check.
//
// A Finding is a human-readable line. Each check produces a Result for one
// of the seven fixed categories, and a Report collects the Results of one
// scan in category order.
//
// Usage:
//
//	res := finding.NewResult(finding.Cookies)
//	res.Add("No cookies found.")
//	report.Add(res)
package finding
