package models

import "time"

// Package is a purchasable bundle of courses.
type Package struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CostCents int64     `db:"cost_cents" json:"cost_cents"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PackageCourse grants a package access to a course.
type PackageCourse struct {
	PackageID string `db:"package_id" json:"package_id"`
	CourseID  string `db:"course_id" json:"course_id"`
}

// PackageDetail is a package with its courses and, when priced for a member, the
// discounted cost.
type PackageDetail struct {
	Package
	Courses         []Course `json:"courses"`
	PriceCents      int64    `json:"price_cents"`
	DiscountApplied float64  `json:"discount_applied"`
}

// PackagePurchase reports the outcome of buying a package: the payment and the
// best-effort enrollment fan-out.
type PackagePurchase struct {
	Transaction      Transaction `json:"transaction"`
	Enrolled         []string    `json:"enrolled"`
	AlreadyEnrolled  []string    `json:"already_enrolled"`
	CapacityExceeded []string    `json:"capacity_exceeded"`
	Failed           []string    `json:"failed,omitempty"`
}
