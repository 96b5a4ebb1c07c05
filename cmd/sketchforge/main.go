// Package main provides the sketchforge CLI for building Arduino-style sketches.
package main

func main() {
	Execute()
}
