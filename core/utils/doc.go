// Package utils provides loose type conversions for values arriving from
// external metadata exports, whose field types vary between versions.
package utils
