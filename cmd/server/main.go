package main

import (
	"github.com/eleven-am/peergrade/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
