// Package utils holds small helpers shared by commands, currently branch name
// validation and sanitizing.
package utils
