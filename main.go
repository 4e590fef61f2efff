package main

import (
	"github.com/nexttether/nexttether/tethermain"
)

func main() {
	tethermain.Run()
}
