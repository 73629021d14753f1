// Package main is the entry point for the fieldmap CLI.
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	Execute()
}
