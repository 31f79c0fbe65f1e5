// Package organization holds the read-only org hierarchy used for shift
// scoping: zone, then branch, then department.
package organization

type Zone struct {
	ID   string
	Code string
	Name string
}

type Branch struct {
	ID     string
	Code   string
	Name   string
	ZoneID string
}

type Department struct {
	ID       string
	Code     string
	Name     string
	BranchID string
}
