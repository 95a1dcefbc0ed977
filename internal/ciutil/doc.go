// Package ciutil centralizes environment detection and the environment
// variables that test and CI tooling read.
package ciutil
