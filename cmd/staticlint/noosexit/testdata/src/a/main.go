package main

import (
	"fmt"
	"os"
)

func exitOnError(err error) {
	if err != nil {
		os.Exit(1)
	}
}

func main() {
	exitOnError(nil)
	if len(os.Args) > 3 {
		os.Exit(2) // want "avoid using os.Exit in main.main"
	}
	defer os.Exit(0) // want "avoid using os.Exit in main.main"
	fmt.Println("done")
}
