package main

import (
	"os"

	"github.com/schmitthub/cosytest/internal/cosy"
)

func main() {
	os.Exit(cosy.Main())
}
