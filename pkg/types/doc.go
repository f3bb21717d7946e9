// Package types defines the Cart, Storage, and Backend interfaces, the
// Product entity, and the standard error types for the gomarket cart.
package types
