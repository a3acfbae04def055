package main

import (
	"voxcollect/cmd"
	"voxcollect/logger"
)

func main() {
	cmd.Execute()
	logger.Sync()
}
