package main

import (
	"fmt"
	"os"
)

func run() int {
	return 0
}

func main() {
	defer fmt.Println("never printed")
	os.Exit(run()) // want "avoid using os.Exit in main.main"
}
