// Package util holds small string helpers shared by config and fetch.
package util
