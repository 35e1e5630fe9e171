// Package images checks base64 data-URI images embedded anywhere in a
// document.
//
// Only transport integrity is checked: a payload passes when it is valid
// standard base64. Pixel data and image headers are never inspected. A value
// that fails is reverted from the shadow document when the shadow holds a
// different value at the same path.
package images
