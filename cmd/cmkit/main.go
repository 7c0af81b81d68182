package main

import "github.com/cmkit/cmkit/cmd/cmkit/internal"

func main() {
	internal.Execute()
}
