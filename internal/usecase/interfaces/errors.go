package interfaces

import "errors"

// ErrVersionConflict is returned by repositories when a conditional update
// loses a concurrent race (the stored version no longer matches). Callers
// re-read the aggregate and re-evaluate instead of propagating it.
var ErrVersionConflict = errors.New("aggregate version conflict")

// ErrPriceNotFound is returned by the price lookup when the catalog has no
// entry for the product/subtype pair.
var ErrPriceNotFound = errors.New("price not found")
