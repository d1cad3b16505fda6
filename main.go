package main

import (
	"log"

	"github.com/AyoubFaradi/emotion-ai/cmd"
	"github.com/AyoubFaradi/emotion-ai/config"
)

func main() {
	log.Printf("emotion-ai %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
