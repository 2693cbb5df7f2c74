package main

import (
	"os"

	"github.com/witlab/concierge/conciergeservice"
)

func main() {
	if err := conciergeservice.Run(); err != nil {
		os.Exit(1)
	}
}
