package main

import (
	pqgo "pqgo/cmd/pqgo-cli"
)

func main() {
	pqgo.Run()
}
