package main

import "os"

func run() int {
	defer func() {}()
	return 0
}

func main() {
	os.Exit(run())
}
