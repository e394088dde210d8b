//go:build cli
// +build cli

package main

import (
	_ "toolpick.GO/cron/jobs"
	_ "toolpick.GO/custom"

	"toolpick.GO/cmd"
	"toolpick.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
