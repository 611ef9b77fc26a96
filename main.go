package main

import (
	"wiiware-modder/cmd"
	"wiiware-modder/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logger.InitLogger() // Initialize the logger first
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
